package workflow

import (
	"context"
	"fmt"

	"seminar/internal/records"
	"seminar/internal/services"
)

// Retry re-enters the failed step for a discussion in the error status.
// The target step is derived from how far the stored artifacts got: no
// transcript re-runs transcription, an unconfirmed mapping re-enters the
// mapping wait, and a fully mapped discussion returns to review. The error
// log is never cleared; recovery history stays visible.
func (m *Manager) Retry(ctx context.Context, discussionID int64) (records.Status, error) {
	disc, err := m.catalog.GetDiscussion(ctx, discussionID)
	if err != nil {
		return "", err
	}
	if disc == nil {
		return "", services.Wrap(services.ErrNotFound, "workflow", "retry", fmt.Sprintf("discussion %d", discussionID), nil)
	}
	if disc.Status != records.StatusError {
		return "", services.Wrap(services.ErrValidation, "workflow", "retry",
			fmt.Sprintf("discussion %d is %s, retry requires error", discussionID, disc.Status), nil)
	}

	transcript, err := m.catalog.TranscriptForDiscussion(ctx, disc.ID)
	if err != nil {
		return "", err
	}
	target := records.StatusUploaded
	hint := "Awaiting transcription"
	if transcript != nil && transcript.UtterancesJSON != "" {
		resolved, err := m.catalog.MappingResolved(ctx, disc.ID)
		if err != nil {
			return "", err
		}
		if resolved {
			target = records.StatusReview
			hint = "Awaiting grades"
		} else {
			target = records.StatusMapping
			hint = "Awaiting speaker mapping"
		}
	}
	if err := m.catalog.SetDiscussionStatus(ctx, disc.ID, target, hint); err != nil {
		return "", err
	}
	return target, nil
}
