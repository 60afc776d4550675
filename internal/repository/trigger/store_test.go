package trigger

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// sampleTrigger returns a trigger with millisecond-precise times.
func sampleTrigger(title string) *timer.PendingTrigger {
	now := time.UnixMilli(time.Now().UnixMilli())

	return &timer.PendingTrigger{
		FireAt: now.Add(25 * time.Minute),
		Payload: timer.Payload{
			Title:    title,
			Vibrate:  true,
			SoundRef: "assets/bell.mp3",
		},
		ScheduledAt: now,
	}
}

// exerciseStore runs the behavior shared by every backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	ctx := context.Background()

	got, err := store.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, got)

	require.NoError(t, store.Clear(ctx), "clearing an empty slot must succeed")
	require.ErrorIs(t, store.Save(ctx, nil), errNilTrigger)

	first := sampleTrigger("Focus")
	require.NoError(t, store.Save(ctx, first))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.True(t, first.FireAt.Equal(got.FireAt))
	require.True(t, first.ScheduledAt.Equal(got.ScheduledAt))
	require.Equal(t, first.Payload, got.Payload)

	// A second save replaces the slot.
	second := sampleTrigger("Break")
	second.FireAt = first.FireAt.Add(-10 * time.Minute)
	second.Payload.Vibrate = false
	require.NoError(t, store.Save(ctx, second))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "Break", got.Payload.Title)
	require.False(t, got.Payload.Vibrate)
	require.True(t, second.FireAt.Equal(got.FireAt))

	require.NoError(t, store.Clear(ctx))

	_, err = store.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestFileStore verifies the shared behavior and restricted permissions.
func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trigger.json")
	store := NewFileStore(path)
	exerciseStore(t, store)

	require.NoError(t, store.Save(context.Background(), sampleTrigger("Focus")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(config.DefaultFilePermissions), info.Mode().Perm())

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NoError(t, store.Close())
}

// TestFileStore_Corrupt verifies undecodable files are reported, not treated as empty.
func TestFileStore_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trigger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

// TestFileStore_TimestampFormat verifies times are stored as RFC 3339 and validated on load.
func TestFileStore_TimestampFormat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trigger.json")
	store := NewFileStore(path)

	trigger := sampleTrigger("Focus")
	trigger.FireAt = time.Date(2026, 3, 2, 10, 0, 0, 250_000_000, time.UTC)
	require.NoError(t, store.Save(ctx, trigger))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"fire_at": "2026-03-02T10:00:00.250Z"`)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, trigger.FireAt.Equal(got.FireAt))

	require.NoError(t, os.WriteFile(path, []byte(`{"fire_at":"yesterday","title":"Focus"}`), 0o600))
	_, err = store.Load(ctx)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Focus"}`), 0o600))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, errMissingTimestamp)
}

// TestSQLiteStore verifies the shared behavior and that reopening keeps the row.
func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "pomodoro.db")

	store, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	exerciseStore(t, store)

	want := sampleTrigger("Persisted")
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Close())

	// Migrations are idempotent across restarts.
	reopened, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want.Payload, got.Payload)

	var version int
	require.NoError(t, reopened.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&version))
	require.Equal(t, 1, version)
}

// TestRedisStore runs against a live server when POMODORO_TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	t.Parallel()

	addr := os.Getenv("POMODORO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("POMODORO_TEST_REDIS_ADDR is not set")
	}

	key := "pomodoro:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)

	store, err := NewRedisStore(context.Background(), addr, 0, key)
	require.NoError(t, err)

	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)
}

// TestRecordFields verifies the hash encoding used by the redis backend.
func TestRecordFields(t *testing.T) {
	t.Parallel()

	rec := toRecord(sampleTrigger("Focus"))

	got, err := recordFromFields(rec.toFields())
	require.NoError(t, err)
	require.Equal(t, rec, got)

	_, err = recordFromFields(map[string]string{fieldFireAt: "soon", fieldVibrate: "true"})
	require.ErrorIs(t, err, errCorruptRecord)

	_, err = recordFromFields(map[string]string{fieldFireAt: "1", fieldVibrate: "maybe"})
	require.ErrorIs(t, err, errCorruptRecord)
}

// TestOpen verifies backend selection.
func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(ctx, config.StoreConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "t.json")})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, store)

	store, err = Open(ctx, config.StoreConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "t.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.StoreConfig{Backend: "etcd"})
	require.ErrorIs(t, err, errUnknownBackend)
}
