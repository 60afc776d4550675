package trigger

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/rueidis"

	"github.com/oshokin/pomodoro-alarm/internal/domain/timer"
)

// RedisStore persists the trigger as a redis hash.
type RedisStore struct {
	// client is the redis connection.
	client rueidis.Client
	// key is the hash key holding the trigger.
	key string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, address string, db int, key string) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{address},
		SelectDB:    db,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	if err = client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, key: key}, nil
}

// Load reads the trigger hash.
func (s *RedisStore) Load(ctx context.Context) (*timer.PendingTrigger, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(s.key).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("hgetall trigger: %w", err)
	}

	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	rec, err := recordFromFields(fields)
	if err != nil {
		return nil, fmt.Errorf("decode trigger: %w", err)
	}

	return fromRecord(rec), nil
}

// Save writes every field of the trigger in a single HSET.
func (s *RedisStore) Save(ctx context.Context, trigger *timer.PendingTrigger) error {
	if trigger == nil {
		return errNilTrigger
	}

	fields := toRecord(trigger).toFields()
	cmd := s.client.B().Hset().Key(s.key).FieldValue()

	// Sorted for a deterministic command.
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}

	slices.Sort(names)

	for _, name := range names {
		cmd = cmd.FieldValue(name, fields[name])
	}

	if err := s.client.Do(ctx, cmd.Build()).Error(); err != nil {
		return fmt.Errorf("hset trigger: %w", err)
	}

	return nil
}

// Clear deletes the trigger hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(s.key).Build()).Error(); err != nil {
		return fmt.Errorf("del trigger: %w", err)
	}

	return nil
}

// Close disconnects from redis.
func (s *RedisStore) Close() error {
	s.client.Close()

	return nil
}
