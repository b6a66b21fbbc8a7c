package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"seminar/internal/store"
)

// Status represents the lifecycle of a discussion.
type Status string

const (
	StatusUploaded     Status = "uploaded"
	StatusTranscribing Status = "transcribing"
	StatusMapping      Status = "mapping"
	StatusReview       Status = "review"
	StatusApproved     Status = "approved"
	StatusSent         Status = "sent"
	StatusError        Status = "error"
)

var allStatuses = []Status{
	StatusUploaded,
	StatusTranscribing,
	StatusMapping,
	StatusReview,
	StatusApproved,
	StatusSent,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether automatic advancement stops at this status.
// Error items stay recoverable through manual retry.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusError
}

// Discussion is one recorded session moving through the review pipeline.
type Discussion struct {
	ID                int64
	Status            Status
	NextStep          string
	Date              string
	Section           string
	Course            string
	Grade             string
	GroupFeedback     string
	Approved          bool
	GradebookItem     string
	GradebookItemType string
	ErrorLog          string
	RecordingRef      string
	RecordingName     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func discussionFromRow(row store.Row) *Discussion {
	return &Discussion{
		ID:                row.ID,
		Status:            Status(row.Get("status")),
		NextStep:          row.Get("next_step"),
		Date:              row.Get("date"),
		Section:           row.Get("section"),
		Course:            row.Get("course"),
		Grade:             row.Get("grade"),
		GroupFeedback:     row.Get("group_feedback"),
		Approved:          parseBool(row.Get("approved")),
		GradebookItem:     row.Get("gradebook_item"),
		GradebookItemType: row.Get("gradebook_item_type"),
		ErrorLog:          row.Get("error_log"),
		RecordingRef:      row.Get("recording_ref"),
		RecordingName:     row.Get("recording_name"),
		CreatedAt:         parseTimeString(row.Get("created_at")),
		UpdatedAt:         parseTimeString(row.Get("updated_at")),
	}
}

// NewDiscussion registers a freshly ingested recording.
func (c *Catalog) NewDiscussion(ctx context.Context, recordingRef, recordingName, date, section, course string) (*Discussion, error) {
	if strings.TrimSpace(recordingRef) == "" {
		return nil, errors.New("recording reference required")
	}
	ts := c.timestamp()
	id, err := c.store.Insert(ctx, Discussions, store.Fields{
		"status":         string(StatusUploaded),
		"next_step":      "Awaiting transcription",
		"date":           date,
		"section":        section,
		"course":         course,
		"recording_ref":  recordingRef,
		"recording_name": recordingName,
		"created_at":     ts,
		"updated_at":     ts,
	})
	if err != nil {
		return nil, err
	}
	return c.GetDiscussion(ctx, id)
}

// GetDiscussion fetches a discussion by identifier, or nil when absent.
func (c *Catalog) GetDiscussion(ctx context.Context, id int64) (*Discussion, error) {
	row, err := c.store.GetByID(ctx, Discussions, id)
	if err != nil || row == nil {
		return nil, err
	}
	return discussionFromRow(*row), nil
}

// FindDiscussionByRecording returns the discussion registered for a recording
// file name, or nil. Intake uses this to keep a re-delivered recording from
// creating a second discussion.
func (c *Catalog) FindDiscussionByRecording(ctx context.Context, recordingName string) (*Discussion, error) {
	row, err := c.store.FindOne(ctx, Discussions, "recording_name", recordingName)
	if err != nil || row == nil {
		return nil, err
	}
	return discussionFromRow(*row), nil
}

// DiscussionsByStatus returns discussions matching a status in insertion order.
func (c *Catalog) DiscussionsByStatus(ctx context.Context, status Status) ([]*Discussion, error) {
	rows, err := c.store.FindMany(ctx, Discussions, "status", string(status))
	if err != nil {
		return nil, err
	}
	out := make([]*Discussion, 0, len(rows))
	for _, row := range rows {
		out = append(out, discussionFromRow(row))
	}
	return out, nil
}

// ListDiscussions returns every discussion in insertion order.
func (c *Catalog) ListDiscussions(ctx context.Context) ([]*Discussion, error) {
	rows, err := c.store.ListAll(ctx, Discussions)
	if err != nil {
		return nil, err
	}
	out := make([]*Discussion, 0, len(rows))
	for _, row := range rows {
		out = append(out, discussionFromRow(row))
	}
	return out, nil
}

// UpdateDiscussion rewrites only the supplied columns and bumps updated_at.
func (c *Catalog) UpdateDiscussion(ctx context.Context, id int64, fields store.Fields) error {
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	return c.store.Update(ctx, Discussions, id, fields)
}

// SetDiscussionStatus transitions a discussion and records the human-facing
// next step hint alongside it.
func (c *Catalog) SetDiscussionStatus(ctx context.Context, id int64, status Status, nextStep string) error {
	if _, ok := statusSet[status]; !ok {
		return fmt.Errorf("unknown status %q", status)
	}
	return c.UpdateDiscussion(ctx, id, store.Fields{
		"status":    string(status),
		"next_step": nextStep,
	})
}

// SetNextStep rewrites only the hint field.
func (c *Catalog) SetNextStep(ctx context.Context, id int64, hint string) error {
	return c.UpdateDiscussion(ctx, id, store.Fields{"next_step": hint})
}

// AppendDiscussionError appends a timestamp-prefixed entry to the error log
// (never overwriting prior entries), moves the discussion to the error
// status, and surfaces the message as the next-step hint.
func (c *Catalog) AppendDiscussionError(ctx context.Context, id int64, message string) error {
	disc, err := c.GetDiscussion(ctx, id)
	if err != nil {
		return err
	}
	if disc == nil {
		return fmt.Errorf("discussion %d not found", id)
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unspecified failure"
	}
	entry := c.now().UTC().Format(time.RFC3339) + ": " + message
	log := disc.ErrorLog
	if log != "" && !strings.HasSuffix(log, "\n") {
		log += "\n"
	}
	log += entry + "\n"
	return c.UpdateDiscussion(ctx, id, store.Fields{
		"status":    string(StatusError),
		"next_step": "Error: " + message,
		"error_log": log,
	})
}

// DiscussionStats counts discussions per status.
func (c *Catalog) DiscussionStats(ctx context.Context) (map[Status]int, error) {
	all, err := c.ListDiscussions(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[Status]int)
	for _, disc := range all {
		stats[disc.Status]++
	}
	return stats, nil
}
