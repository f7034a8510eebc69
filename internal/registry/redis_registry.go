package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "replay:sessions:"

// RedisRegistry implements Registry on a Redis backend. Sessions live under
// replay:sessions:<id> with a TTL so a crashed worker's entries age out, and
// ids are tracked in a replay:sessions:active set for listing.
type RedisRegistry struct {
	client *redis.Client
	logger *logrus.Logger
	ttl    time.Duration
}

// NewRedisRegistry creates a Redis-backed registry.
func NewRedisRegistry(client *redis.Client, logger *logrus.Logger, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRegistry{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

// Register adds a session or refreshes an existing one.
func (r *RedisRegistry) Register(ctx context.Context, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	session.LastHeartbeat = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+session.ID, data, r.ttl)
	pipe.SAdd(ctx, keyPrefix+"active", session.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to register session: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"path":       session.Path,
		"status":     session.Status,
	}).Info("Session registered")
	return nil
}

// Heartbeat refreshes the session's TTL and playback progress.
func (r *RedisRegistry) Heartbeat(ctx context.Context, session *Session) error {
	session.LastHeartbeat = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to heartbeat session: %w", err)
	}

	r.logger.WithField("session_id", session.ID).Debug("Session heartbeat")
	return nil
}

// Unregister removes a session.
func (r *RedisRegistry) Unregister(ctx context.Context, sessionID string) error {
	deleted, err := r.client.Del(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		return fmt.Errorf("failed to unregister session: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("unregister %s: %w", sessionID, ErrSessionNotFound)
	}

	if err := r.client.SRem(ctx, keyPrefix+"active", sessionID).Err(); err != nil {
		r.logger.Warnf("Failed to remove session %s from active set: %v", sessionID, err)
	}

	r.logger.WithField("session_id", sessionID).Info("Session unregistered")
	return nil
}

// Get retrieves a session by ID.
func (r *RedisRegistry) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := r.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// List returns all live sessions. Ids whose record expired are pruned from
// the active set as a side effect.
func (r *RedisRegistry) List(ctx context.Context) ([]*Session, error) {
	ids, err := r.client.SMembers(ctx, keyPrefix+"active").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		session, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				// Record expired; drop the stale id.
				r.client.SRem(ctx, keyPrefix+"active", id)
				continue
			}
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// Close releases the Redis client.
func (r *RedisRegistry) Close() error {
	return r.client.Close()
}
