package records

import (
	"context"
	"time"

	"seminar/internal/store"
)

// Report carries the per-participant grade and feedback in individual mode.
// At most one row exists per (discussion, participant) pair.
type Report struct {
	ID            int64
	DiscussionID  int64
	ParticipantID int64
	Excerpt       string
	Grade         string
	Feedback      string
	Approved      bool
	Sent          bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func reportFromRow(row store.Row) *Report {
	return &Report{
		ID:            row.ID,
		DiscussionID:  parseID(row.Get("discussion_id")),
		ParticipantID: parseID(row.Get("participant_id")),
		Excerpt:       row.Get("excerpt"),
		Grade:         row.Get("grade"),
		Feedback:      row.Get("feedback"),
		Approved:      parseBool(row.Get("approved")),
		Sent:          parseBool(row.Get("sent")),
		CreatedAt:     parseTimeString(row.Get("created_at")),
		UpdatedAt:     parseTimeString(row.Get("updated_at")),
	}
}

// ReportsForDiscussion returns every report row for a discussion.
func (c *Catalog) ReportsForDiscussion(ctx context.Context, discussionID int64) ([]*Report, error) {
	rows, err := c.store.FindMany(ctx, Reports, "discussion_id", formatID(discussionID))
	if err != nil {
		return nil, err
	}
	out := make([]*Report, 0, len(rows))
	for _, row := range rows {
		out = append(out, reportFromRow(row))
	}
	return out, nil
}

// ReportFor returns the report for a (discussion, participant) pair, or nil.
func (c *Catalog) ReportFor(ctx context.Context, discussionID, participantID int64) (*Report, error) {
	reports, err := c.ReportsForDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	for _, report := range reports {
		if report.ParticipantID == participantID {
			return report, nil
		}
	}
	return nil, nil
}

// EnsureReport lazily materializes the report for a (discussion, participant)
// pair. Re-invocation returns the existing row untouched.
func (c *Catalog) EnsureReport(ctx context.Context, discussionID, participantID int64, excerpt string) (*Report, error) {
	existing, err := c.ReportFor(ctx, discussionID, participantID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	ts := c.timestamp()
	if _, err := c.store.Insert(ctx, Reports, store.Fields{
		"discussion_id":  formatID(discussionID),
		"participant_id": formatID(participantID),
		"excerpt":        excerpt,
		"approved":       formatBool(false),
		"sent":           formatBool(false),
		"created_at":     ts,
		"updated_at":     ts,
	}); err != nil {
		return nil, err
	}
	return c.ReportFor(ctx, discussionID, participantID)
}

// UpdateReport rewrites only the supplied columns and bumps updated_at.
func (c *Catalog) UpdateReport(ctx context.Context, id int64, fields store.Fields) error {
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	return c.store.Update(ctx, Reports, id, fields)
}

// MarkReportSent flips the sent flag so a batch retry skips this recipient.
func (c *Catalog) MarkReportSent(ctx context.Context, id int64) error {
	return c.UpdateReport(ctx, id, store.Fields{"sent": formatBool(true)})
}
