package provision

import (
	"context"
	"fmt"

	"github.com/NotHennadii/fogoctl/pkg/logger"
)

// Report summarizes a pipeline run for the caller.
type Report struct {
	// Completed lists the names of steps that finished (ok or warning).
	Completed []string
	// Warnings holds the messages of every degraded step.
	Warnings []string
}

// Pipeline executes steps sequentially and stops at the first fatal outcome.
type Pipeline struct {
	steps []Step
	log   logger.Logger
}

// NewPipeline builds a pipeline over the given steps.
func NewPipeline(log logger.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Run executes every step in order. The returned Report covers all steps that
// ran, including the run that produced a fatal error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("provisioning interrupted: %w", err)
		}

		out := step.Run(ctx)
		switch out.Status {
		case StatusOK:
			if out.Detail != "" {
				p.log.Info(step.Name, logger.Field{Key: "detail", Value: out.Detail})
			} else {
				p.log.Info(step.Name)
			}
			report.Completed = append(report.Completed, step.Name)
		case StatusWarn:
			p.log.Warn(step.Name+" degraded, continuing", logger.Field{Key: "error", Value: out.Err})
			report.Completed = append(report.Completed, step.Name)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", step.Name, out.Err))
		case StatusFatal:
			p.log.Error(step.Name+" failed", logger.Field{Key: "error", Value: out.Err})
			return report, fmt.Errorf("%s: %w", step.Name, out.Err)
		}
	}

	return report, nil
}
