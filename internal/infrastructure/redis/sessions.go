// Package redisinfra stores login sessions in Redis. The key TTL carries the
// absolute session lifetime, so expiry is enforced by Redis itself.
package redisinfra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jobboard-api/internal/config"
	"github.com/jobboard-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// NewClient creates a Redis client from the session settings in cfg.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// SessionStore keeps one JSON blob per session under session:<id>.
type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *SessionStore) Put(ctx context.Context, sess *domain.Session) error {
	ttl := sess.ExpiresTime().Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.SessionID)
	}
	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(sess.SessionID), blob, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	blob, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := json.Unmarshal(blob, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrNotFound)
	}
	return &sess, nil
}

// Update rewrites an existing session while keeping its remaining TTL.
func (s *SessionStore) Update(ctx context.Context, sess *domain.Session) error {
	blob, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	err = s.rdb.SetArgs(ctx, sessionKey(sess.SessionID), blob, redis.SetArgs{
		Mode:    "XX",
		KeepTTL: true,
	}).Err()
	if errors.Is(err, redis.Nil) {
		return fmt.Errorf("session not found: %w", domain.ErrNotFound)
	}
	return err
}

// Delete removes the session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}
