package workflow

import (
	"context"
	"errors"

	"seminar/internal/logging"
	"seminar/internal/modes"
	"seminar/internal/records"
	"seminar/internal/stageexec"
)

// runTranscriptions feeds every uploaded discussion through the
// transcription step. A step failure has already moved the discussion to
// the error status, so the loop just carries on.
func (m *Manager) runTranscriptions(ctx context.Context) error {
	if m.transcriber == nil {
		return nil
	}
	discussions, err := m.catalog.DiscussionsByStatus(ctx, records.StatusUploaded)
	if err != nil {
		return err
	}
	first := true
	for _, disc := range discussions {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.pause(ctx, &first)
		err := stageexec.Run(ctx, stageexec.Options{
			Logger:     m.logger,
			Catalog:    m.catalog,
			Notifier:   m.notifier,
			Handler:    m.transcriber,
			StepName:   "transcription",
			Processing: records.StatusTranscribing,
			Done:       records.StatusMapping,
			NextStep:   "Awaiting speaker mapping",
			Discussion: disc,
		})
		if err != nil && errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

// advanceMappings resolves speakers for freshly transcribed discussions and
// promotes fully mapped ones into review. In group mode the resolver
// auto-confirms, so promotion happens on the same tick; individual mode
// waits for the reviewer to confirm every label.
func (m *Manager) advanceMappings(ctx context.Context, snapshot records.SettingsSnapshot) error {
	discussions, err := m.catalog.DiscussionsByStatus(ctx, records.StatusMapping)
	if err != nil {
		return err
	}
	mode := snapshot.Mode()
	strategy := modes.ForMode(mode, m.catalog)
	first := true
	for _, disc := range discussions {
		if err := ctx.Err(); err != nil {
			return err
		}
		mappings, err := m.catalog.MappingsForDiscussion(ctx, disc.ID)
		if err != nil {
			return err
		}
		if len(mappings) == 0 {
			if m.resolver == nil {
				continue
			}
			transcript, err := m.catalog.TranscriptForDiscussion(ctx, disc.ID)
			if err != nil {
				return err
			}
			if transcript == nil {
				m.failDiscussion(ctx, disc, errors.New("mapping requested without a transcript"))
				continue
			}
			utterances, err := transcript.Utterances()
			if err != nil {
				m.failDiscussion(ctx, disc, err)
				continue
			}
			m.pause(ctx, &first)
			if err := m.resolver.Resolve(ctx, disc, utterances, mode); err != nil {
				m.failDiscussion(ctx, disc, err)
				continue
			}
		}

		resolved, err := m.catalog.MappingResolved(ctx, disc.ID)
		if err != nil {
			return err
		}
		if !resolved {
			if disc.NextStep != "Awaiting speaker confirmation" {
				if err := m.catalog.SetNextStep(ctx, disc.ID, "Awaiting speaker confirmation"); err != nil {
					return err
				}
			}
			continue
		}

		hint, err := strategy.PrepareReview(ctx, disc)
		if err != nil {
			m.failDiscussion(ctx, disc, err)
			continue
		}
		if err := m.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusReview, hint); err != nil {
			return err
		}
		m.logger.Info("discussion ready for review", logging.Args(
			logging.String(logging.FieldEventType, "review_ready"),
			logging.Int64(logging.FieldDiscussionID, disc.ID))...)
		if err := m.notifier.NotifyReviewReady(ctx, disc.RecordingName, hint); err != nil {
			m.logger.Debug("review notification failed", logging.Args(logging.Error(err))...)
		}
	}
	return nil
}

func (m *Manager) failDiscussion(ctx context.Context, disc *records.Discussion, cause error) {
	m.logger.Error("discussion failed", logging.Args(
		logging.String(logging.FieldEventType, "discussion_failed"),
		logging.Int64(logging.FieldDiscussionID, disc.ID),
		logging.Error(cause))...)
	if err := m.catalog.AppendDiscussionError(ctx, disc.ID, cause.Error()); err != nil {
		m.logger.Error("failed to persist error log entry", logging.Args(logging.Error(err))...)
	}
	if err := m.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusError, "Retry speaker mapping"); err != nil {
		m.logger.Error("failed to persist error status", logging.Args(logging.Error(err))...)
	}
	if err := m.notifier.NotifyError(ctx, cause, disc.RecordingName); err != nil {
		m.logger.Debug("error notification failed", logging.Args(logging.Error(err))...)
	}
}
