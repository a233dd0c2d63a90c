package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NotHennadii/fogoctl/pkg/logger"
)

func step(name string, out Outcome, ran *[]string) Step {
	return Step{
		Name: name,
		Run: func(context.Context) Outcome {
			*ran = append(*ran, name)
			return out
		},
	}
}

func TestPipelineRunsAllSteps(t *testing.T) {
	var ran []string
	p := NewPipeline(logger.Nop(),
		step("first", OK(""), &ran),
		step("second", OK("detail"), &ran),
	)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ran)
	assert.Equal(t, []string{"first", "second"}, report.Completed)
	assert.Empty(t, report.Warnings)
}

func TestPipelineCollectsWarningsAndContinues(t *testing.T) {
	var ran []string
	p := NewPipeline(logger.Nop(),
		step("first", Warn(errors.New("degraded")), &ran),
		step("second", OK(""), &ran),
	)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, ran)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "degraded")
}

func TestPipelineStopsAtFirstFatal(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	p := NewPipeline(logger.Nop(),
		step("first", OK(""), &ran),
		step("second", Fatal(boom), &ran),
		step("third", OK(""), &ran),
	)

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, ran, "steps after a fatal must not run")
	assert.Equal(t, []string{"first"}, report.Completed)
}

func TestPipelineHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran []string
	p := NewPipeline(logger.Nop(), step("first", OK(""), &ran))

	_, err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ran)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "warning", StatusWarn.String())
	assert.Equal(t, "fatal", StatusFatal.String())
}
