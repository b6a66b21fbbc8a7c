package records

import (
	"strconv"
	"time"

	"seminar/internal/store"
)

// Catalog bundles typed access to every collection over one record store.
type Catalog struct {
	store *store.Store
	now   func() time.Time
}

// NewCatalog wraps a record store.
func NewCatalog(s *store.Store) *Catalog {
	return &Catalog{store: s, now: time.Now}
}

// WithClock overrides the timestamp source (used in tests).
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	if now != nil {
		c.now = now
	}
	return c
}

// Store exposes the underlying record store for diagnostics.
func (c *Catalog) Store() *store.Store {
	return c.store
}

func (c *Catalog) timestamp() string {
	return c.now().UTC().Format(time.RFC3339Nano)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(value string) int64 {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func parseBool(value string) bool {
	return value == "true" || value == "1"
}

func formatBool(value bool) string {
	if value {
		return "true"
	}
	return "false"
}

func parseTimeString(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
		return t
	}
	return time.Time{}
}
