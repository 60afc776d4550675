package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// errMissingTimestamp is returned when a trigger file lacks its fire time.
var errMissingTimestamp = errors.New("timestamp is missing")

// FileStore persists the trigger to a JSON file on disk.
// Times are written as RFC 3339 strings through the protobuf Timestamp JSON mapping.
type FileStore struct {
	// path is the filesystem location of the JSON trigger file.
	path string
	// mu protects concurrent access to the trigger file.
	mu sync.Mutex
}

// NewFileStore creates a store that reads/writes JSON at the provided path.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Load reads the trigger from disk.
func (s *FileStore) Load(_ context.Context) (*timer.PendingTrigger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read trigger file: %w", err)
	}

	var doc fileDocument
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode trigger file: %w", err)
	}

	if doc.FireAt.ts == nil {
		return nil, fmt.Errorf("decode trigger file: fire_at: %w", errMissingTimestamp)
	}

	return doc.toTrigger(), nil
}

// Save writes the trigger to a temporary file and renames it over the old one.
func (s *FileStore) Save(_ context.Context, trigger *timer.PendingTrigger) error {
	if trigger == nil {
		return errNilTrigger
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(newFileDocument(trigger), "", "  ")
	if err != nil {
		return fmt.Errorf("encode trigger: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp trigger file: %w", err)
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Fails harmlessly after a successful rename.

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("chmod temp trigger file: %w", err)
	}

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("write temp trigger file: %w", err)
	}

	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("sync temp trigger file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp trigger file: %w", err)
	}

	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace trigger file: %w", err)
	}

	return nil
}

// Clear removes the trigger file.
func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove trigger file: %w", err)
	}

	return nil
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error {
	return nil
}

// fileDocument is the on-disk form of a pending trigger.
type fileDocument struct {
	FireAt      protoTime `json:"fire_at"`
	Title       string    `json:"title"`
	Vibrate     bool      `json:"vibrate"`
	Sound       string    `json:"sound"`
	ScheduledAt protoTime `json:"scheduled_at"`
}

func newFileDocument(trigger *timer.PendingTrigger) fileDocument {
	return fileDocument{
		FireAt:      protoTime{ts: timestamppb.New(trigger.FireAt)},
		Title:       trigger.Payload.Title,
		Vibrate:     trigger.Payload.Vibrate,
		Sound:       trigger.Payload.SoundRef,
		ScheduledAt: protoTime{ts: timestamppb.New(trigger.ScheduledAt)},
	}
}

func (d fileDocument) toTrigger() *timer.PendingTrigger {
	return &timer.PendingTrigger{
		FireAt: d.FireAt.asTime(),
		Payload: timer.Payload{
			Title:    d.Title,
			Vibrate:  d.Vibrate,
			SoundRef: d.Sound,
		},
		ScheduledAt: d.ScheduledAt.asTime(),
	}
}

// protoTime embeds a protobuf Timestamp in a plain JSON document.
type protoTime struct {
	ts *timestamppb.Timestamp
}

// MarshalJSON writes the Timestamp JSON mapping.
func (t protoTime) MarshalJSON() ([]byte, error) {
	if t.ts == nil {
		return []byte("null"), nil
	}

	return protojson.Marshal(t.ts)
}

// UnmarshalJSON reads the Timestamp JSON mapping and rejects out-of-range values.
func (t *protoTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.ts = nil

		return nil
	}

	ts := new(timestamppb.Timestamp)
	if err := protojson.Unmarshal(data, ts); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	if err := ts.CheckValid(); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}

	t.ts = ts

	return nil
}

// asTime returns the wall-clock time at millisecond precision, or the zero time when unset.
func (t protoTime) asTime() time.Time {
	if t.ts == nil {
		return time.Time{}
	}

	return time.UnixMilli(t.ts.AsTime().UnixMilli())
}
