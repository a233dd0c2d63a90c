package provision

import (
	"context"
	"fmt"
)

// Status classifies the result of a provisioning step.
type Status int

const (
	// StatusOK means the step succeeded.
	StatusOK Status = iota
	// StatusWarn means the step degraded but the pipeline continues.
	StatusWarn
	// StatusFatal means the pipeline must halt immediately.
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarn:
		return "warning"
	case StatusFatal:
		return "fatal"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the explicit result of a single provisioning step. Control flow
// that shell scripts express as halt-on-error is modeled as a value so the
// driver alone decides what stops the pipeline.
type Outcome struct {
	Status Status
	// Detail is a short human-readable note, e.g. "reusing existing environment".
	Detail string
	Err    error
}

// OK returns a successful outcome with an optional detail note.
func OK(detail string) Outcome {
	return Outcome{Status: StatusOK, Detail: detail}
}

// Warn returns a non-fatal degraded outcome.
func Warn(err error) Outcome {
	return Outcome{Status: StatusWarn, Err: err}
}

// Fatal returns an outcome that halts the pipeline.
func Fatal(err error) Outcome {
	return Outcome{Status: StatusFatal, Err: err}
}

// Step is one named stage of the provisioning pipeline.
type Step struct {
	Name string
	Run  func(ctx context.Context) Outcome
}
