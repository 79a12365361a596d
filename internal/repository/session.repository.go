package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/pkg/redis"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

type SessionRepository struct {
	redis redis.RedisAdapter
}

func NewSessionRepository(r redis.RedisAdapter) *SessionRepository {
	return &SessionRepository{redis: r}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save stores the session and (re)starts its expiry.
func (r *SessionRepository) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.redis.Set(ctx, sessionKey(s.ID), b, ttl)
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	b, err := r.redis.Get(ctx, sessionKey(id))
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &s, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.redis.Del(ctx, sessionKey(id))
}
