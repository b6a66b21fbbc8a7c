package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages record persistence backed by SQLite. One Store serves every
// collection; tables are created lazily on first access.
type Store struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	created map[string]struct{}
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the record database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	return &Store{db: db, path: path, created: make(map[string]struct{})}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// ListAll returns every row of the collection in insertion order.
func (s *Store) ListAll(ctx context.Context, coll Collection) ([]Row, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return nil, err
	}
	query := `SELECT id, ` + strings.Join(coll.Columns, ", ") + ` FROM ` + coll.Name + ` ORDER BY id`
	return s.queryRows(ctx, coll, query)
}

// FindOne returns the first row whose column equals value, or nil when none
// matches.
func (s *Store) FindOne(ctx context.Context, coll Collection, column, value string) (*Row, error) {
	rows, err := s.findWhere(ctx, coll, column, value, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &row, nil
}

// FindMany returns every row whose column equals value, in insertion order.
func (s *Store) FindMany(ctx context.Context, coll Collection, column, value string) ([]Row, error) {
	return s.findWhere(ctx, coll, column, value, 0)
}

// GetByID fetches a row by its stable reference, or nil when absent.
func (s *Store) GetByID(ctx context.Context, coll Collection, id int64) (*Row, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return nil, err
	}
	query := `SELECT id, ` + strings.Join(coll.Columns, ", ") + ` FROM ` + coll.Name + ` WHERE id = ?`
	rows, err := s.queryRows(ctx, coll, query, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	return &row, nil
}

// Insert adds a row, assigning a value for every declared column (missing
// fields default to empty), and returns the stable row reference.
func (s *Store) Insert(ctx context.Context, coll Collection, fields Fields) (int64, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return 0, err
	}
	for column := range fields {
		if !coll.hasColumn(column) {
			return 0, fmt.Errorf("insert %s: unknown column %q", coll.Name, column)
		}
	}
	args := make([]any, 0, len(coll.Columns))
	placeholders := make([]string, 0, len(coll.Columns))
	for _, column := range coll.Columns {
		args = append(args, fields[column])
		placeholders = append(placeholders, "?")
	}
	query := `INSERT INTO ` + coll.Name + ` (` + strings.Join(coll.Columns, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", coll.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert %s: last insert id: %w", coll.Name, err)
	}
	return id, nil
}

// Update rewrites only the columns present in fields, leaving the rest of the
// row untouched. Updating a row that does not exist is an error.
func (s *Store) Update(ctx context.Context, coll Collection, id int64, fields Fields) error {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, column := range coll.Columns {
		value, ok := fields[column]
		if !ok {
			continue
		}
		assignments = append(assignments, column+" = ?")
		args = append(args, value)
	}
	if len(assignments) != len(fields) {
		for column := range fields {
			if !coll.hasColumn(column) {
				return fmt.Errorf("update %s: unknown column %q", coll.Name, column)
			}
		}
	}
	args = append(args, id)
	query := `UPDATE ` + coll.Name + ` SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", coll.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: rows affected: %w", coll.Name, err)
	}
	if affected == 0 {
		return fmt.Errorf("update %s: row %d not found", coll.Name, id)
	}
	return nil
}

// Delete removes a row by reference, reporting whether it existed.
func (s *Store) Delete(ctx context.Context, coll Collection, id int64) (bool, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return false, err
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM `+coll.Name+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", coll.Name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: rows affected: %w", coll.Name, err)
	}
	return affected > 0, nil
}

// CountWhere returns the number of rows whose column equals value.
func (s *Store) CountWhere(ctx context.Context, coll Collection, column, value string) (int, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return 0, err
	}
	if !coll.hasColumn(column) {
		return 0, fmt.Errorf("count %s: unknown column %q", coll.Name, column)
	}
	var count int
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM `+coll.Name+` WHERE `+column+` = ?`, value)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s: %w", coll.Name, err)
	}
	return count, nil
}

func (s *Store) findWhere(ctx context.Context, coll Collection, column, value string, limit int) ([]Row, error) {
	if err := s.ensureCollection(ctx, coll); err != nil {
		return nil, err
	}
	if !coll.hasColumn(column) {
		return nil, fmt.Errorf("find %s: unknown column %q", coll.Name, column)
	}
	query := `SELECT id, ` + strings.Join(coll.Columns, ", ") + ` FROM ` + coll.Name + ` WHERE ` + column + ` = ? ORDER BY id`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryRows(ctx, coll, query, value)
}

func (s *Store) queryRows(ctx context.Context, coll Collection, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name, err)
	}
	defer rows.Close()

	var results []Row
	for rows.Next() {
		row, err := scanRow(coll, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", coll.Name, err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func scanRow(coll Collection, scanner interface{ Scan(dest ...any) error }) (Row, error) {
	dest := make([]any, 0, len(coll.Columns)+1)
	var id int64
	dest = append(dest, &id)
	values := make([]sql.NullString, len(coll.Columns))
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := scanner.Scan(dest...); err != nil {
		return Row{}, err
	}
	fields := make(Fields, len(coll.Columns))
	for i, column := range coll.Columns {
		fields[column] = values[i].String
	}
	return Row{ID: id, Fields: fields}, nil
}

// ensureCollection materializes the collection's table on first access.
// Accessing an unknown collection is not an error.
func (s *Store) ensureCollection(ctx context.Context, coll Collection) error {
	if err := coll.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	_, done := s.created[coll.Name]
	s.mu.Unlock()
	if done {
		return nil
	}

	defs := make([]string, 0, len(coll.Columns)+1)
	defs = append(defs, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, column := range coll.Columns {
		defs = append(defs, column+" TEXT NOT NULL DEFAULT ''")
	}
	query := `CREATE TABLE IF NOT EXISTS ` + coll.Name + ` (` + strings.Join(defs, ", ") + `)`
	if _, err := s.execWithRetry(ctx, query); err != nil {
		return fmt.Errorf("materialize collection %s: %w", coll.Name, err)
	}

	s.mu.Lock()
	s.created[coll.Name] = struct{}{}
	s.mu.Unlock()
	return nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
