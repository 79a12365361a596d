package processor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("event already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	// LockTTL bounds how long one consumer may hold an event.
	LockTTL time.Duration
	// ProcessedTTL is how long a finished event is remembered.
	ProcessedTTL time.Duration
	MaxRetries   int
	KeyPrefix    string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:      30 * time.Second,
		ProcessedTTL: 24 * time.Hour,
		MaxRetries:   3,
		KeyPrefix:    "event:",
	}
}

// IdempotencyService makes sure an event is applied at most once, even when
// the stream redelivers it.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

func (s *IdempotencyService) processedKey(id string) string { return s.config.KeyPrefix + "processed:" + id }
func (s *IdempotencyService) lockKey(id string) string      { return s.config.KeyPrefix + "lock:" + id }
func (s *IdempotencyService) retryKey(id string) string     { return s.config.KeyPrefix + "retry:" + id }

// Claim is held while an event is being applied.
type Claim struct {
	EventID    string
	RetryCount int
	held       bool
}

// Acquire claims eventID for this consumer.
func (s *IdempotencyService) Acquire(ctx context.Context, eventID string) (*Claim, error) {
	done, err := s.IsProcessed(ctx, eventID)
	if err != nil {
		logger.Warn("[idempotency] processed check failed", "event_id", eventID, "error", err)
	} else if done {
		return nil, ErrAlreadyProcessed
	}

	retries, err := s.RetryCount(ctx, eventID)
	if err != nil {
		logger.Warn("[idempotency] retry counter unavailable", "event_id", eventID, "error", err)
	}
	if retries >= s.config.MaxRetries {
		return nil, fmt.Errorf("%w: event_id=%s, retries=%d", ErrMaxRetriesExceeded, eventID, retries)
	}

	ok, err := s.redis.SetNX(ctx, s.lockKey(eventID), []byte(strconv.FormatInt(time.Now().UnixNano(), 10)), s.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !ok {
		return nil, ErrLockAcquireFailed
	}

	logger.Debug("[idempotency] lock acquired", "event_id", eventID, "retry_count", retries)
	return &Claim{EventID: eventID, RetryCount: retries, held: true}, nil
}

// Complete remembers the event as processed and drops the lock.
func (s *IdempotencyService) Complete(ctx context.Context, c *Claim) error {
	if err := s.redis.Set(ctx, s.processedKey(c.EventID), []byte("1"), s.config.ProcessedTTL); err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}
	s.del(ctx, s.retryKey(c.EventID))
	s.Release(ctx, c)
	return nil
}

// Fail counts a failed attempt and drops the lock so the event can be retried.
func (s *IdempotencyService) Fail(ctx context.Context, c *Claim, reason error) {
	next := c.RetryCount + 1
	if err := s.redis.Set(ctx, s.retryKey(c.EventID), []byte(strconv.Itoa(next)), s.config.ProcessedTTL); err != nil {
		logger.Error("[idempotency] failed to increment retry counter", "event_id", c.EventID, "error", err)
	}
	s.Release(ctx, c)

	logger.Warn("[idempotency] event failed, will retry",
		"event_id", c.EventID,
		"retry_count", next,
		"max_retries", s.config.MaxRetries,
		"reason", reason)
}

func (s *IdempotencyService) Release(ctx context.Context, c *Claim) {
	if c == nil || !c.held {
		return
	}
	s.del(ctx, s.lockKey(c.EventID))
	c.held = false
}

func (s *IdempotencyService) RetryCount(ctx context.Context, eventID string) (int, error) {
	b, err := s.redis.Get(ctx, s.retryKey(eventID))
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return 0, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("corrupt retry counter for %s: %w", eventID, err)
	}
	return n, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := s.redis.Exist(ctx, s.processedKey(eventID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *IdempotencyService) del(ctx context.Context, key string) {
	if err := s.redis.Del(ctx, key); err != nil {
		logger.Warn("[idempotency] cleanup failed", "key", key, "error", err)
	}
}
