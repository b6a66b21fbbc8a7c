package records

import (
	"context"
	"errors"
	"strings"

	"seminar/internal/store"
)

// Mode selects which entities carry grade and feedback.
type Mode string

const (
	// ModeGroup stores one grade and one feedback text on the discussion.
	ModeGroup Mode = "group"
	// ModeIndividual stores grade and feedback on per-participant reports.
	ModeIndividual Mode = "individual"
)

// ParseMode normalizes a mode value, defaulting to group.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeIndividual)) {
		return ModeIndividual
	}
	return ModeGroup
}

// Setting scopes.
const (
	ScopeGlobal     = "global"
	ScopeCourse     = "course"
	ScopeDiscussion = "discussion"
)

// Well-known setting keys.
const (
	KeyMode             = "mode"
	KeyChannelMail      = "channel_mail"
	KeyChannelGradebook = "channel_gradebook"
	KeyItemType         = "gradebook_item_type"
)

// SettingsSnapshot is a read-once view of the settings collection for one
// invocation. The orchestrator takes a snapshot at tick start so a reviewer
// editing settings mid-tick cannot produce inconsistent reads.
type SettingsSnapshot struct {
	values map[string]string
}

func settingKey(scope, scopeID, key string) string {
	return scope + "\x00" + scopeID + "\x00" + key
}

// SettingsSnapshot reads every setting row once.
func (c *Catalog) SettingsSnapshot(ctx context.Context) (SettingsSnapshot, error) {
	rows, err := c.store.ListAll(ctx, Settings)
	if err != nil {
		return SettingsSnapshot{}, err
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[settingKey(row.Get("scope"), row.Get("scope_id"), row.Get("key"))] = row.Get("value")
	}
	return SettingsSnapshot{values: values}, nil
}

// Resolve applies the discussion -> course -> global overlay for one key.
// Empty course or discussion identifiers skip their layer.
func (s SettingsSnapshot) Resolve(key, course string, discussionID int64) string {
	if discussionID > 0 {
		if v, ok := s.values[settingKey(ScopeDiscussion, formatID(discussionID), key)]; ok {
			return v
		}
	}
	if course != "" {
		if v, ok := s.values[settingKey(ScopeCourse, course, key)]; ok {
			return v
		}
	}
	return s.values[settingKey(ScopeGlobal, "", key)]
}

// Mode returns the install's grading mode.
func (s SettingsSnapshot) Mode() Mode {
	return ParseMode(s.Resolve(KeyMode, "", 0))
}

// ChannelEnabled reports whether a distribution channel is switched on for
// the discussion. Channels default to off until explicitly enabled.
func (s SettingsSnapshot) ChannelEnabled(key, course string, discussionID int64) bool {
	return parseBool(s.Resolve(key, course, discussionID))
}

// ItemType resolves the gradebook item type with overlay fallback.
func (s SettingsSnapshot) ItemType(course string, discussionID int64, fallback string) string {
	if v := strings.TrimSpace(s.Resolve(KeyItemType, course, discussionID)); v != "" {
		return v
	}
	return fallback
}

// SetSetting stores or replaces one setting row.
func (c *Catalog) SetSetting(ctx context.Context, scope, scopeID, key, value string) error {
	scope = strings.TrimSpace(scope)
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("setting key required")
	}
	switch scope {
	case ScopeGlobal, ScopeCourse, ScopeDiscussion:
	default:
		return errors.New("setting scope must be global, course, or discussion")
	}
	rows, err := c.store.FindMany(ctx, Settings, "key", key)
	if err != nil {
		return err
	}
	fields := store.Fields{
		"value":      value,
		"updated_at": c.timestamp(),
	}
	for _, row := range rows {
		if row.Get("scope") == scope && row.Get("scope_id") == scopeID {
			return c.store.Update(ctx, Settings, row.ID, fields)
		}
	}
	fields["scope"] = scope
	fields["scope_id"] = scopeID
	fields["key"] = key
	_, err = c.store.Insert(ctx, Settings, fields)
	return err
}

// ListSettings returns every setting row in insertion order.
func (c *Catalog) ListSettings(ctx context.Context) ([]store.Row, error) {
	return c.store.ListAll(ctx, Settings)
}
