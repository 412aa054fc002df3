package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/tailored-agentic-units/voicedesk/core/protocol"
)

// RedisStore is a Store backed by Redis. Histories live in a list per
// session and idle eviction is delegated to key TTLs, refreshed on every
// touch so a session cannot expire during an active request. Serialization
// gates are process-local: the deployment model is one server process per
// Redis database.
type RedisStore struct {
	client      *redis.Client
	gates       sync.Map // session id -> *sync.Mutex
	idleTimeout time.Duration
}

// NewRedisStore creates a RedisStore from configuration.
func NewRedisStore(cfg *Config) (*RedisStore, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("redis backend requires redis_addr")
	}

	idle := time.Duration(cfg.IdleTimeoutSeconds) * time.Second
	if idle <= 0 {
		idle = defaultIdleTimeoutSeconds * time.Second
	}

	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
		idleTimeout: idle,
	}, nil
}

func metaKey(id string) string     { return "voicedesk:session:" + id + ":meta" }
func messagesKey(id string) string { return "voicedesk:session:" + id + ":messages" }

func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (string, error) {
	if id != "" {
		exists, err := s.client.Exists(ctx, metaKey(id)).Result()
		if err != nil {
			return "", fmt.Errorf("session lookup failed: %w", err)
		}
		if exists > 0 {
			return id, s.touch(ctx, id)
		}
	}

	id = uuid.Must(uuid.NewV7()).String()
	if err := s.client.HSet(ctx, metaKey(id), "created", time.Now().Format(time.RFC3339Nano)).Err(); err != nil {
		return "", fmt.Errorf("session create failed: %w", err)
	}
	return id, s.touch(ctx, id)
}

func (s *RedisStore) Acquire(ctx context.Context, id string) (func(), error) {
	exists, err := s.client.Exists(ctx, metaKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if exists == 0 {
		return nil, ErrUnknownSession
	}

	gate, _ := s.gates.LoadOrStore(id, &sync.Mutex{})
	mu := gate.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock, nil
}

func (s *RedisStore) Append(ctx context.Context, id string, msg protocol.Message) error {
	exists, err := s.client.Exists(ctx, metaKey(id)).Result()
	if err != nil {
		return fmt.Errorf("session lookup failed: %w", err)
	}
	if exists == 0 {
		return ErrUnknownSession
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("message encode failed: %w", err)
	}
	if err := s.client.RPush(ctx, messagesKey(id), payload).Err(); err != nil {
		return fmt.Errorf("session append failed: %w", err)
	}
	return s.touch(ctx, id)
}

func (s *RedisStore) History(ctx context.Context, id string, maxTurns int) ([]protocol.Message, error) {
	exists, err := s.client.Exists(ctx, metaKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if exists == 0 {
		return nil, ErrUnknownSession
	}

	raw, err := s.client.LRange(ctx, messagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("session read failed: %w", err)
	}

	msgs := make([]protocol.Message, len(raw))
	for i, item := range raw {
		if err := json.Unmarshal([]byte(item), &msgs[i]); err != nil {
			return nil, fmt.Errorf("message decode failed: %w", err)
		}
	}

	return truncate(msgs, maxTurns), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// touch refreshes the idle TTL on both session keys.
func (s *RedisStore) touch(ctx context.Context, id string) error {
	if err := s.client.Expire(ctx, metaKey(id), s.idleTimeout).Err(); err != nil {
		return fmt.Errorf("session touch failed: %w", err)
	}
	// The messages key may not exist yet on a fresh session; expiry on a
	// missing key is a no-op.
	if err := s.client.Expire(ctx, messagesKey(id), s.idleTimeout).Err(); err != nil {
		return fmt.Errorf("session touch failed: %w", err)
	}
	return nil
}
