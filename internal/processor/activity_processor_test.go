package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCounter struct {
	calls int
}

func (f *failingCounter) Increment(ctx context.Context, date string, fields map[string]int64) error {
	f.calls++
	return errors.New("redis down")
}

func eventMessage(t *testing.T, e model.CallEvent) *queue.Message {
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return &queue.Message{
		ID:       "1-0",
		Data:     data,
		Metadata: map[string]string{"type": string(e.Type)},
	}
}

func TestActivityProcessor_IncrementsCounters(t *testing.T) {
	adapter, _ := repository.SetupTestRedis(t)
	counters := repository.NewActivityRepository(adapter, time.Hour)
	p := NewActivityProcessor(counters, NewIdempotencyService(adapter, DefaultIdempotencyConfig()))
	ctx := context.Background()

	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	require.NoError(t, p.Process(ctx, eventMessage(t, model.CallEvent{
		ID:         "e1",
		Type:       model.CallEventCreated,
		CallID:     1,
		AgentName:  "Mona",
		Status:     model.CallStatusNoAnswer,
		OccurredAt: at,
	})))
	require.NoError(t, p.Process(ctx, eventMessage(t, model.CallEvent{
		ID:         "e2",
		Type:       model.CallEventDayArchived,
		AgentName:  "Chandan",
		Count:      4,
		OccurredAt: at,
	})))

	got, err := counters.Get(ctx, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got["total"])
	assert.Equal(t, int64(1), got["call_created"])
	assert.Equal(t, int64(1), got["agent:Mona:call_created"])
	assert.Equal(t, int64(1), got["status:no_answer"])
	assert.Equal(t, int64(1), got["day_archived"])
	assert.Equal(t, int64(4), got["archived_calls"])
}

func TestActivityProcessor_DuplicateSkipped(t *testing.T) {
	adapter, _ := repository.SetupTestRedis(t)
	counters := repository.NewActivityRepository(adapter, time.Hour)
	p := NewActivityProcessor(counters, NewIdempotencyService(adapter, DefaultIdempotencyConfig()))
	ctx := context.Background()

	msg := eventMessage(t, model.CallEvent{
		ID:         "dup",
		Type:       model.CallEventUpdated,
		Status:     model.CallStatusConfirmed,
		OccurredAt: time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, p.Process(ctx, msg))
	require.NoError(t, p.Process(ctx, msg))

	got, err := counters.Get(ctx, "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got["total"])
	assert.Equal(t, int64(1), got["status:confirmed"])
}

func TestActivityProcessor_MalformedDropped(t *testing.T) {
	adapter, _ := repository.SetupTestRedis(t)
	counter := &failingCounter{}
	p := NewActivityProcessor(counter, NewIdempotencyService(adapter, DefaultIdempotencyConfig()))

	err := p.Process(context.Background(), &queue.Message{ID: "1-0", Data: []byte("{not json")})
	assert.NoError(t, err)

	err = p.Process(context.Background(), &queue.Message{ID: "2-0", Data: []byte(`{"type":"call_created"}`)})
	assert.NoError(t, err)
	assert.Zero(t, counter.calls)
}

func TestActivityProcessor_IncrementFailureIsRetried(t *testing.T) {
	adapter, _ := repository.SetupTestRedis(t)
	cfg := DefaultIdempotencyConfig()
	cfg.MaxRetries = 1
	idem := NewIdempotencyService(adapter, cfg)
	counter := &failingCounter{}
	p := NewActivityProcessor(counter, idem)
	ctx := context.Background()

	msg := eventMessage(t, model.CallEvent{ID: "e9", Type: model.CallEventDeleted, OccurredAt: time.Now()})

	err := p.Process(ctx, msg)
	assert.Error(t, err)

	n, err := idem.RetryCount(ctx, "e9")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// retries exhausted, the message is acked without touching the counters
	assert.NoError(t, p.Process(ctx, msg))
	assert.Equal(t, 1, counter.calls)
}

func TestActivityFields(t *testing.T) {
	fields := activityFields(model.CallEvent{Type: model.CallEventDeleted})
	assert.Equal(t, map[string]int64{"total": 1, "call_deleted": 1}, fields)
}
