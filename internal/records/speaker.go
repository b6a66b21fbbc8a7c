package records

import (
	"context"
	"time"

	"seminar/internal/store"
)

// UnknownName is the placeholder recorded when the suggestion step cannot
// confidently resolve a speaker label.
const UnknownName = "?"

// FacilitatorName is the reserved name for a detected facilitator or other
// non-participant role.
const FacilitatorName = "Facilitator"

// SpeakerMapping is one detected speaker label for a discussion, with the
// AI-suggested name and the reviewer's confirmation.
type SpeakerMapping struct {
	ID            int64
	DiscussionID  int64
	Label         string
	SuggestedName string
	ConfirmedName string
	Confirmed     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DisplayName returns the reviewer-visible name for the label: the confirmed
// name, falling back to the suggestion, falling back to the raw label.
func (m SpeakerMapping) DisplayName() string {
	if m.Confirmed && m.ConfirmedName != "" {
		return m.ConfirmedName
	}
	if m.SuggestedName != "" && m.SuggestedName != UnknownName {
		return m.SuggestedName
	}
	return m.Label
}

func speakerMappingFromRow(row store.Row) *SpeakerMapping {
	return &SpeakerMapping{
		ID:            row.ID,
		DiscussionID:  parseID(row.Get("discussion_id")),
		Label:         row.Get("label"),
		SuggestedName: row.Get("suggested_name"),
		ConfirmedName: row.Get("confirmed_name"),
		Confirmed:     parseBool(row.Get("confirmed")),
		CreatedAt:     parseTimeString(row.Get("created_at")),
		UpdatedAt:     parseTimeString(row.Get("updated_at")),
	}
}

// MappingsForDiscussion returns every speaker mapping row for a discussion.
func (c *Catalog) MappingsForDiscussion(ctx context.Context, discussionID int64) ([]*SpeakerMapping, error) {
	rows, err := c.store.FindMany(ctx, SpeakerMappings, "discussion_id", formatID(discussionID))
	if err != nil {
		return nil, err
	}
	out := make([]*SpeakerMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, speakerMappingFromRow(row))
	}
	return out, nil
}

// UpsertSpeakerMapping creates or updates the mapping row for one label of a
// discussion. At most one row exists per (discussion, label).
func (c *Catalog) UpsertSpeakerMapping(ctx context.Context, discussionID int64, label string, fields store.Fields) (*SpeakerMapping, error) {
	existing, err := c.findMapping(ctx, discussionID, label)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	if existing != nil {
		if err := c.store.Update(ctx, SpeakerMappings, existing.ID, fields); err != nil {
			return nil, err
		}
		return c.findMapping(ctx, discussionID, label)
	}
	fields["discussion_id"] = formatID(discussionID)
	fields["label"] = label
	fields["created_at"] = fields["updated_at"]
	if _, err := c.store.Insert(ctx, SpeakerMappings, fields); err != nil {
		return nil, err
	}
	return c.findMapping(ctx, discussionID, label)
}

// ConfirmSpeaker records the reviewer's name for a label and marks it
// confirmed.
func (c *Catalog) ConfirmSpeaker(ctx context.Context, discussionID int64, label, name string) error {
	_, err := c.UpsertSpeakerMapping(ctx, discussionID, label, store.Fields{
		"confirmed_name": name,
		"confirmed":      formatBool(true),
	})
	return err
}

// MappingResolved reports whether every speaker mapping row for the
// discussion is confirmed. A discussion with no rows is not resolved.
func (c *Catalog) MappingResolved(ctx context.Context, discussionID int64) (bool, error) {
	mappings, err := c.MappingsForDiscussion(ctx, discussionID)
	if err != nil {
		return false, err
	}
	if len(mappings) == 0 {
		return false, nil
	}
	for _, mapping := range mappings {
		if !mapping.Confirmed {
			return false, nil
		}
	}
	return true, nil
}

func (c *Catalog) findMapping(ctx context.Context, discussionID int64, label string) (*SpeakerMapping, error) {
	rows, err := c.store.FindMany(ctx, SpeakerMappings, "discussion_id", formatID(discussionID))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Get("label") == label {
			return speakerMappingFromRow(row), nil
		}
	}
	return nil, nil
}
