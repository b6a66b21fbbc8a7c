package store

import (
	"fmt"
	"strings"
)

// Collection declares a named table of rows sharing a fixed column schema.
// Key names the natural-key column used by upsert-style callers; it must be
// one of Columns. The zero Key is allowed for key/value style collections.
type Collection struct {
	Name    string
	Key     string
	Columns []string
}

// Fields is a partial or complete set of column values for one row.
type Fields map[string]string

// Row is one stored record. ID is the stable row reference handed back by
// Insert and accepted by Update.
type Row struct {
	ID     int64
	Fields Fields
}

// Get returns the value for a column, or "" when absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

func (c Collection) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("collection name required")
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("collection %s: at least one column required", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Columns))
	for _, col := range c.Columns {
		if !validIdentifier(col) {
			return fmt.Errorf("collection %s: invalid column name %q", c.Name, col)
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("collection %s: duplicate column %q", c.Name, col)
		}
		seen[col] = struct{}{}
	}
	if c.Key != "" {
		if _, ok := seen[c.Key]; !ok {
			return fmt.Errorf("collection %s: key column %q not declared", c.Name, c.Key)
		}
	}
	if !validIdentifier(c.Name) {
		return fmt.Errorf("invalid collection name %q", c.Name)
	}
	return nil
}

func (c Collection) hasColumn(name string) bool {
	for _, col := range c.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// validIdentifier restricts collection and column names to what can be spliced
// into SQL safely. Values always travel as bound parameters; identifiers can't.
func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
