package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"seminar/internal/store"
)

// PromptTemplate is a named, runtime-editable text template.
type PromptTemplate struct {
	ID        int64
	Name      string
	Body      string
	UpdatedAt time.Time
}

func templateFromRow(row store.Row) *PromptTemplate {
	return &PromptTemplate{
		ID:        row.ID,
		Name:      row.Get("name"),
		Body:      row.Get("body"),
		UpdatedAt: parseTimeString(row.Get("updated_at")),
	}
}

// TemplateByName returns the stored template, or nil when the install has no
// override for that name.
func (c *Catalog) TemplateByName(ctx context.Context, name string) (*PromptTemplate, error) {
	row, err := c.store.FindOne(ctx, PromptTemplates, "name", name)
	if err != nil || row == nil {
		return nil, err
	}
	return templateFromRow(*row), nil
}

// ListTemplates returns every stored template override.
func (c *Catalog) ListTemplates(ctx context.Context) ([]*PromptTemplate, error) {
	rows, err := c.store.ListAll(ctx, PromptTemplates)
	if err != nil {
		return nil, err
	}
	out := make([]*PromptTemplate, 0, len(rows))
	for _, row := range rows {
		out = append(out, templateFromRow(row))
	}
	return out, nil
}

// SetTemplate stores or replaces the named template body.
func (c *Catalog) SetTemplate(ctx context.Context, name, body string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("template name required")
	}
	existing, err := c.TemplateByName(ctx, name)
	if err != nil {
		return err
	}
	fields := store.Fields{
		"body":       body,
		"updated_at": c.timestamp(),
	}
	if existing != nil {
		return c.store.Update(ctx, PromptTemplates, existing.ID, fields)
	}
	fields["name"] = name
	_, err = c.store.Insert(ctx, PromptTemplates, fields)
	return err
}

// DeleteTemplate removes a stored override so the built-in body applies
// again. Returns false when no override existed.
func (c *Catalog) DeleteTemplate(ctx context.Context, name string) (bool, error) {
	existing, err := c.TemplateByName(ctx, strings.TrimSpace(name))
	if err != nil || existing == nil {
		return false, err
	}
	return c.store.Delete(ctx, PromptTemplates, existing.ID)
}
