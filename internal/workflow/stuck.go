package workflow

import (
	"context"
	"fmt"

	"seminar/internal/logging"
	"seminar/internal/records"
)

// flagStuck moves discussions that have sat in transcribing past the
// configured timeout into the error status. The elapsed time lands in the
// error log so the reviewer can judge whether the external tool hung or is
// merely slow.
func (m *Manager) flagStuck(ctx context.Context) error {
	if m.stuckAfter <= 0 {
		return nil
	}
	discussions, err := m.catalog.DiscussionsByStatus(ctx, records.StatusTranscribing)
	if err != nil {
		return err
	}
	for _, disc := range discussions {
		elapsed := m.now().Sub(disc.UpdatedAt)
		if elapsed < m.stuckAfter {
			continue
		}
		minutes := int(elapsed.Minutes())
		message := fmt.Sprintf("transcription stuck after %d minutes", minutes)
		if err := m.catalog.AppendDiscussionError(ctx, disc.ID, message); err != nil {
			return err
		}
		if err := m.catalog.SetDiscussionStatus(ctx, disc.ID, records.StatusError, "Retry transcription"); err != nil {
			return err
		}
		m.logger.Warn("discussion flagged as stuck", logging.Args(
			logging.String(logging.FieldEventType, "discussion_stuck"),
			logging.Int64(logging.FieldDiscussionID, disc.ID),
			logging.Int("elapsed_minutes", minutes))...)
		if err := m.notifier.NotifyError(ctx, fmt.Errorf("%s", message), disc.RecordingName); err != nil {
			m.logger.Debug("stuck notification failed", logging.Args(logging.Error(err))...)
		}
	}
	return nil
}
