package trigger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// slotKey is the fixed identity of the single trigger row.
const slotKey = "pending"

// migrationsFS holds the schema migrations, applied in filename order.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists the trigger in a sqlite database.
type SQLiteStore struct {
	// db is the database handle limited to a single connection.
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and migrates it.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = FULL;",
	} {
		if _, err = db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err = migrate(ctx, db); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

// migrate applies every embedded migration newer than the database user_version.
func migrate(ctx context.Context, db *sql.DB) error {
	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for i, entry := range entries {
		version := i + 1
		if version <= current {
			continue
		}

		body, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}

		if err = applyMigration(ctx, db, version, string(body)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// applyMigration runs one migration and bumps user_version in the same transaction.
func applyMigration(ctx context.Context, db *sql.DB, version int, body string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op.

	if _, err = tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	// PRAGMA does not accept bound parameters.
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d;", version)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	return nil
}

// Load reads the trigger row.
func (s *SQLiteStore) Load(ctx context.Context) (*timer.PendingTrigger, error) {
	var rec record

	err := s.db.QueryRowContext(ctx, `
		SELECT fire_at_ms, title, vibrate, sound, scheduled_at_ms
		FROM pending_trigger
		WHERE slot = ?`, slotKey).
		Scan(&rec.FireAtMillis, &rec.Title, &rec.Vibrate, &rec.Sound, &rec.ScheduledAtMillis)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("query trigger: %w", err)
	}

	return fromRecord(rec), nil
}

// Save upserts the trigger row.
func (s *SQLiteStore) Save(ctx context.Context, trigger *timer.PendingTrigger) error {
	if trigger == nil {
		return errNilTrigger
	}

	rec := toRecord(trigger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pending_trigger (slot, fire_at_ms, title, vibrate, sound, scheduled_at_ms)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (slot) DO UPDATE SET
			fire_at_ms = excluded.fire_at_ms,
			title = excluded.title,
			vibrate = excluded.vibrate,
			sound = excluded.sound,
			scheduled_at_ms = excluded.scheduled_at_ms`,
		slotKey, rec.FireAtMillis, rec.Title, rec.Vibrate, rec.Sound, rec.ScheduledAtMillis)
	if err != nil {
		return fmt.Errorf("upsert trigger: %w", err)
	}

	return nil
}

// Clear deletes the trigger row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_trigger WHERE slot = ?`, slotKey); err != nil {
		return fmt.Errorf("delete trigger: %w", err)
	}

	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
