// Package stageexec runs one pipeline step for one discussion and applies
// the shared transition semantics: persist the processing status first, run
// the handler, then advance to the done status unless the handler already
// moved the discussion somewhere else. Failures land in the error status
// with the message appended to the discussion's error log.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"seminar/internal/logging"
	"seminar/internal/notifications"
	"seminar/internal/records"
	"seminar/internal/services"
	"seminar/internal/stage"
)

// Options controls step execution and record persistence behavior.
type Options struct {
	Logger     *slog.Logger
	Catalog    *records.Catalog
	Notifier   notifications.Service
	Handler    stage.Handler
	StepName   string
	Processing records.Status
	Done       records.Status
	NextStep   string
	Discussion *records.Discussion
}

// Run executes one step for one discussion.
func Run(ctx context.Context, opts Options) error {
	if opts.Handler == nil {
		return fmt.Errorf("step handler unavailable: %s", opts.StepName)
	}
	if opts.Catalog == nil {
		return fmt.Errorf("record catalog is required")
	}
	if opts.Discussion == nil {
		return fmt.Errorf("discussion is required")
	}

	stepCtx := services.WithStep(services.WithDiscussionID(ctx, opts.Discussion.ID), opts.StepName)
	stepCtx = services.WithRequestID(stepCtx, uuid.NewString())
	stepLogger := logging.WithContext(stepCtx, opts.Logger)
	if aware, ok := opts.Handler.(stage.LoggerAware); ok {
		aware.SetLogger(stepLogger)
	}

	stepLogger.Info("step started", logging.Args(
		logging.String(logging.FieldEventType, "step_start"),
		logging.String("processing_status", string(opts.Processing)),
		logging.String("recording", strings.TrimSpace(opts.Discussion.RecordingName)))...)

	if err := opts.Catalog.SetDiscussionStatus(stepCtx, opts.Discussion.ID, opts.Processing, opts.StepName+" in progress"); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	opts.Discussion.Status = opts.Processing

	if err := opts.Handler.Prepare(stepCtx, opts.Discussion); err != nil {
		return handleFailure(stepCtx, stepLogger, opts, err)
	}
	if err := opts.Handler.Execute(stepCtx, opts.Discussion); err != nil {
		return handleFailure(stepCtx, stepLogger, opts, err)
	}

	// A handler may advance the discussion itself; only the default
	// processing status rolls forward here.
	if opts.Discussion.Status == opts.Processing {
		if err := opts.Catalog.SetDiscussionStatus(stepCtx, opts.Discussion.ID, opts.Done, opts.NextStep); err != nil {
			return fmt.Errorf("persist step result: %w", err)
		}
		opts.Discussion.Status = opts.Done
		opts.Discussion.NextStep = opts.NextStep
	}

	stepLogger.Info("step completed", logging.Args(
		logging.String(logging.FieldEventType, "step_complete"),
		logging.String("next_status", string(opts.Discussion.Status)))...)
	return nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, stepErr error) error {
	details := services.Details(stepErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = "step failed"
	}

	logger.Error("step failed", logging.Args(
		logging.String(logging.FieldEventType, "step_failure"),
		logging.String(logging.FieldErrorKind, string(details.Kind)),
		logging.Error(stepErr))...)

	if err := opts.Catalog.AppendDiscussionError(ctx, opts.Discussion.ID, message); err != nil {
		logger.Error("failed to persist error log entry", logging.Args(logging.Error(err))...)
	}
	hint := fmt.Sprintf("Retry %s after resolving: %s", opts.StepName, message)
	if err := opts.Catalog.SetDiscussionStatus(ctx, opts.Discussion.ID, records.StatusError, hint); err != nil {
		logger.Error("failed to persist error status", logging.Args(logging.Error(err))...)
	}
	opts.Discussion.Status = records.StatusError

	if opts.Notifier != nil {
		contextLabel := fmt.Sprintf("%s (discussion #%d)", opts.StepName, opts.Discussion.ID)
		if err := opts.Notifier.NotifyError(ctx, stepErr, contextLabel); err != nil {
			logger.Debug("step error notification failed", logging.Args(logging.Error(err))...)
		}
	}
	return stepErr
}
