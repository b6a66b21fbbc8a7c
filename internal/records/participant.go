package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"seminar/internal/store"
)

// Participant is one roster entry, upserted by its (name, section, course)
// identity tuple.
type Participant struct {
	ID            int64
	Name          string
	Contact       string
	Section       string
	Course        string
	GradebookUser string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func participantFromRow(row store.Row) *Participant {
	return &Participant{
		ID:            row.ID,
		Name:          row.Get("name"),
		Contact:       row.Get("contact"),
		Section:       row.Get("section"),
		Course:        row.Get("course"),
		GradebookUser: row.Get("gradebook_user"),
		CreatedAt:     parseTimeString(row.Get("created_at")),
		UpdatedAt:     parseTimeString(row.Get("updated_at")),
	}
}

// GetParticipant fetches a participant by identifier, or nil.
func (c *Catalog) GetParticipant(ctx context.Context, id int64) (*Participant, error) {
	row, err := c.store.GetByID(ctx, Participants, id)
	if err != nil || row == nil {
		return nil, err
	}
	return participantFromRow(*row), nil
}

// FindParticipant resolves a participant by identity tuple, or nil.
func (c *Catalog) FindParticipant(ctx context.Context, name, section, course string) (*Participant, error) {
	rows, err := c.store.FindMany(ctx, Participants, "name", name)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if row.Get("section") == section && row.Get("course") == course {
			return participantFromRow(row), nil
		}
	}
	return nil, nil
}

// UpsertParticipant creates or updates a roster entry keyed by
// (name, section, course); never two rows share the identity tuple.
func (c *Catalog) UpsertParticipant(ctx context.Context, name, section, course string, fields store.Fields) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("participant name required")
	}
	existing, err := c.FindParticipant(ctx, name, section, course)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	if existing != nil {
		if err := c.store.Update(ctx, Participants, existing.ID, fields); err != nil {
			return nil, err
		}
		return c.FindParticipant(ctx, name, section, course)
	}
	fields["name"] = name
	fields["section"] = section
	fields["course"] = course
	fields["created_at"] = fields["updated_at"]
	if _, err := c.store.Insert(ctx, Participants, fields); err != nil {
		return nil, err
	}
	return c.FindParticipant(ctx, name, section, course)
}

// ListParticipants returns every roster entry, optionally filtered to one
// course.
func (c *Catalog) ListParticipants(ctx context.Context, course string) ([]*Participant, error) {
	var (
		rows []store.Row
		err  error
	)
	course = strings.TrimSpace(course)
	if course != "" {
		rows, err = c.store.FindMany(ctx, Participants, "course", course)
	} else {
		rows, err = c.store.ListAll(ctx, Participants)
	}
	if err != nil {
		return nil, err
	}
	out := make([]*Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

// ParticipantsForDiscussion returns roster entries whose section and course
// match the discussion.
func (c *Catalog) ParticipantsForDiscussion(ctx context.Context, disc *Discussion) ([]*Participant, error) {
	if disc == nil {
		return nil, errors.New("discussion required")
	}
	rows, err := c.store.FindMany(ctx, Participants, "section", disc.Section)
	if err != nil {
		return nil, err
	}
	out := make([]*Participant, 0, len(rows))
	for _, row := range rows {
		if row.Get("course") != disc.Course {
			continue
		}
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

// FindParticipantByName returns the first roster entry with the given name
// scoped to the discussion's section and course, or nil.
func (c *Catalog) FindParticipantByName(ctx context.Context, disc *Discussion, name string) (*Participant, error) {
	if disc == nil {
		return nil, errors.New("discussion required")
	}
	return c.FindParticipant(ctx, strings.TrimSpace(name), disc.Section, disc.Course)
}
