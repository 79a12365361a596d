package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/pura-ai/call-tracker/pkg/redis"
)

const activityKeyPrefix = "activity:"

// ActivityRepository keeps per-day event counters in a redis hash.
type ActivityRepository struct {
	redis redis.RedisAdapter
	ttl   time.Duration
}

func NewActivityRepository(r redis.RedisAdapter, retention time.Duration) *ActivityRepository {
	return &ActivityRepository{redis: r, ttl: retention}
}

func activityKey(date string) string {
	return activityKeyPrefix + date
}

func (r *ActivityRepository) Increment(ctx context.Context, date string, fields map[string]int64) error {
	if len(fields) == 0 {
		return nil
	}
	return r.redis.HIncrementBatch(ctx, activityKey(date), fields, r.ttl)
}

func (r *ActivityRepository) Get(ctx context.Context, date string) (map[string]int64, error) {
	raw, err := r.redis.HGetAll(ctx, activityKey(date))
	if err != nil {
		return nil, err
	}
	counters := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		counters[k] = n
	}
	return counters, nil
}
