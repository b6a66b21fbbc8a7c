package workflow

import (
	"context"

	"seminar/internal/intake"
	"seminar/internal/logging"
)

// ingest moves new inbox recordings into the processing directory and
// creates one discussion per recording. Recordings whose name is already
// known are skipped so a re-delivered file never duplicates a discussion.
func (m *Manager) ingest(ctx context.Context) error {
	if m.scanner == nil {
		return nil
	}
	recordings, err := m.scanner.ListNewRecordings()
	if err != nil {
		return err
	}
	for _, recording := range recordings {
		existing, err := m.catalog.FindDiscussionByRecording(ctx, recording.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		dest, err := m.scanner.MoveToProcessing(recording.ID)
		if err != nil {
			m.logger.Warn("recording intake failed", logging.Args(
				logging.String("recording", recording.Name),
				logging.Error(err))...)
			continue
		}
		course, section, date := intake.ParseName(recording.Name)
		disc, err := m.catalog.NewDiscussion(ctx, dest, recording.Name, date, section, course)
		if err != nil {
			return err
		}
		m.logger.Info("recording ingested", logging.Args(
			logging.String(logging.FieldEventType, "recording_ingested"),
			logging.Int64(logging.FieldDiscussionID, disc.ID),
			logging.String("recording", recording.Name))...)
	}
	return nil
}
