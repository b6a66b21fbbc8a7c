package stage

import (
	"context"
	"log/slog"

	"seminar/internal/records"
)

// Handler describes the contract the workflow manager needs from each
// pipeline step.
type Handler interface {
	Prepare(context.Context, *records.Discussion) error
	Execute(context.Context, *records.Discussion) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the executor hand a contextual logger to handlers that
// want one.
type LoggerAware interface {
	SetLogger(logger *slog.Logger)
}
