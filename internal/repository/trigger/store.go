package trigger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// Store defines persistence operations for the pending trigger slot.
type Store interface {
	// Load returns the stored trigger or ErrNotFound when the slot is empty.
	Load(ctx context.Context) (*timer.PendingTrigger, error)
	// Save replaces the stored trigger atomically.
	Save(ctx context.Context, trigger *timer.PendingTrigger) error
	// Clear empties the slot; clearing an empty slot is not an error.
	Clear(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}

var (
	// ErrNotFound is returned when no trigger is stored.
	ErrNotFound = errors.New("trigger not found")
	// errNilTrigger is returned when Save is called without a trigger.
	errNilTrigger = errors.New("trigger is not set")
	// errCorruptRecord is returned when a stored record cannot be decoded.
	errCorruptRecord = errors.New("corrupt trigger record")
	// errUnknownBackend is returned for an unsupported backend name.
	errUnknownBackend = errors.New("unknown store backend")
)

// Record field names of the redis hash.
const (
	fieldFireAt      = "fire_at_ms"
	fieldTitle       = "title"
	fieldVibrate     = "vibrate"
	fieldSound       = "sound"
	fieldScheduledAt = "scheduled_at_ms"
)

// record is the flat form of a pending trigger used by the sqlite and redis backends.
type record struct {
	// FireAtMillis is the fire time in epoch milliseconds.
	FireAtMillis int64
	// Title is the alert title.
	Title string
	// Vibrate enables vibration.
	Vibrate bool
	// Sound is the sound reference.
	Sound string
	// ScheduledAtMillis is the registration time in epoch milliseconds.
	ScheduledAtMillis int64
}

// Open creates the store selected by the configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Path), nil
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.Path)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisAddress, cfg.RedisDB, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("open store %q: %w", cfg.Backend, errUnknownBackend)
	}
}

// toRecord converts the domain trigger into its serialized form.
func toRecord(trigger *timer.PendingTrigger) record {
	return record{
		FireAtMillis:      trigger.FireAt.UnixMilli(),
		Title:             trigger.Payload.Title,
		Vibrate:           trigger.Payload.Vibrate,
		Sound:             trigger.Payload.SoundRef,
		ScheduledAtMillis: trigger.ScheduledAt.UnixMilli(),
	}
}

// fromRecord converts the serialized form into the domain trigger.
func fromRecord(rec record) *timer.PendingTrigger {
	return &timer.PendingTrigger{
		FireAt: time.UnixMilli(rec.FireAtMillis),
		Payload: timer.Payload{
			Title:    rec.Title,
			Vibrate:  rec.Vibrate,
			SoundRef: rec.Sound,
		},
		ScheduledAt: time.UnixMilli(rec.ScheduledAtMillis),
	}
}

// toFields flattens a record into hash fields.
func (r record) toFields() map[string]string {
	return map[string]string{
		fieldFireAt:      strconv.FormatInt(r.FireAtMillis, 10),
		fieldTitle:       r.Title,
		fieldVibrate:     strconv.FormatBool(r.Vibrate),
		fieldSound:       r.Sound,
		fieldScheduledAt: strconv.FormatInt(r.ScheduledAtMillis, 10),
	}
}

// recordFromFields rebuilds a record from hash fields.
func recordFromFields(fields map[string]string) (record, error) {
	fireAt, err := strconv.ParseInt(fields[fieldFireAt], 10, 64)
	if err != nil {
		return record{}, fmt.Errorf("%s: %w", fieldFireAt, errCorruptRecord)
	}

	vibrate, err := strconv.ParseBool(fields[fieldVibrate])
	if err != nil {
		return record{}, fmt.Errorf("%s: %w", fieldVibrate, errCorruptRecord)
	}

	// A missing registration time is tolerated.
	scheduledAt, _ := strconv.ParseInt(fields[fieldScheduledAt], 10, 64)

	return record{
		FireAtMillis:      fireAt,
		Title:             fields[fieldTitle],
		Vibrate:           vibrate,
		Sound:             fields[fieldSound],
		ScheduledAtMillis: scheduledAt,
	}, nil
}
