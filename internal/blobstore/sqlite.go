package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"autoprotocol/internal/logging"
)

// SQLiteStore keeps every blob as a row of the blobs table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps the pragmas below in force for every statement.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := applyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if logger == nil {
		logger = logging.NewNop()
	}
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// List returns every blob in scope ordered by name.
func (s *SQLiteStore) List(ctx context.Context, scope string) ([]Blob, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, data, updated_at FROM blobs WHERE scope = ? ORDER BY name`, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", scope, err)
	}
	defer rows.Close()

	var blobs []Blob
	for rows.Next() {
		var (
			blob    = Blob{Scope: scope}
			updated string
		)
		if err := rows.Scan(&blob.Name, &blob.Data, &updated); err != nil {
			return nil, fmt.Errorf("scan blob: %w", err)
		}
		blob.ModTime = parseTime(updated)
		blobs = append(blobs, blob)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", scope, err)
	}
	return blobs, nil
}

// Read returns the content of one blob.
func (s *SQLiteStore) Read(ctx context.Context, scope, name string) ([]byte, error) {
	if err := validateScope(scope); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE scope = ? AND name = ?`, scope, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", scope, name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", scope, name, err)
	}
	return data, nil
}

// Write creates or replaces a blob.
func (s *SQLiteStore) Write(ctx context.Context, scope, name string, data []byte) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO blobs (scope, name, data, updated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(scope, name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		scope,
		name,
		data,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", scope, name, err)
	}
	s.logger.Debug("blob written",
		logging.String(logging.FieldScope, scope),
		logging.String(logging.FieldBlob, name),
		logging.Int("bytes", len(data)),
	)
	return nil
}

// Delete removes one blob.
func (s *SQLiteStore) Delete(ctx context.Context, scope, name string) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	if err := validateName(name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE scope = ? AND name = ?`, scope, name)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", scope, name, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s/%s: %w", scope, name, ErrNotFound)
	}
	return nil
}

// Clear removes every blob in scope.
func (s *SQLiteStore) Clear(ctx context.Context, scope string) error {
	if err := validateScope(scope); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE scope = ?`, scope)
	if err != nil {
		return fmt.Errorf("clear %s: %w", scope, err)
	}
	removed, _ := res.RowsAffected()
	s.logger.Debug("scope cleared", logging.String(logging.FieldScope, scope), logging.Int64("removed", removed))
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
