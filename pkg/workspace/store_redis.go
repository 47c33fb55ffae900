package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore persists workspace state in redis, for deployments where a
// session may resume on any instance. Keys expire after TTL so abandoned
// sessions clean themselves up.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state for session %s: %w", sessionID, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, ErrStateNotFound
	}
	return &state, nil
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := r.client.Set(ctx, r.key(state.SessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save state for session %s: %w", state.SessionID, err)
	}
	return nil
}

// Clear implements Store.
func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear state for session %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisStore) key(sessionID string) string {
	return "wayfinder:workspace:" + sessionID
}
