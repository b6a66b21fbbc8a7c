package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"seminar/internal/store"
)

// Course maps a friendly course name to its gradebook identity plus optional
// per-course overrides, used when the install serves more than one course.
type Course struct {
	ID              int64
	Name            string
	GradebookCourse string
	BaseURL         string
	ItemType        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func courseFromRow(row store.Row) *Course {
	return &Course{
		ID:              row.ID,
		Name:            row.Get("name"),
		GradebookCourse: row.Get("gradebook_course"),
		BaseURL:         row.Get("base_url"),
		ItemType:        row.Get("item_type"),
		CreatedAt:       parseTimeString(row.Get("created_at")),
		UpdatedAt:       parseTimeString(row.Get("updated_at")),
	}
}

// CourseByName returns the course overlay row, or nil.
func (c *Catalog) CourseByName(ctx context.Context, name string) (*Course, error) {
	row, err := c.store.FindOne(ctx, Courses, "name", name)
	if err != nil || row == nil {
		return nil, err
	}
	return courseFromRow(*row), nil
}

// ListCourses returns every configured course overlay.
func (c *Catalog) ListCourses(ctx context.Context) ([]*Course, error) {
	rows, err := c.store.ListAll(ctx, Courses)
	if err != nil {
		return nil, err
	}
	out := make([]*Course, 0, len(rows))
	for _, row := range rows {
		out = append(out, courseFromRow(row))
	}
	return out, nil
}

// UpsertCourse stores or replaces a course overlay keyed by friendly name.
func (c *Catalog) UpsertCourse(ctx context.Context, name string, fields store.Fields) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("course name required")
	}
	existing, err := c.CourseByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	fields["updated_at"] = c.timestamp()
	if existing != nil {
		if err := c.store.Update(ctx, Courses, existing.ID, fields); err != nil {
			return nil, err
		}
		return c.CourseByName(ctx, name)
	}
	fields["name"] = name
	fields["created_at"] = fields["updated_at"]
	if _, err := c.store.Insert(ctx, Courses, fields); err != nil {
		return nil, err
	}
	return c.CourseByName(ctx, name)
}
