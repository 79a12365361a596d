package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/pkg/logger"
)

const activityDateLayout = "2006-01-02"

type ActivityCounter interface {
	Increment(ctx context.Context, date string, fields map[string]int64) error
}

// ActivityProcessor folds call events into per-day counters.
type ActivityProcessor struct {
	counters    ActivityCounter
	idempotency *IdempotencyService
}

func NewActivityProcessor(counters ActivityCounter, idempotency *IdempotencyService) *ActivityProcessor {
	return &ActivityProcessor{
		counters:    counters,
		idempotency: idempotency,
	}
}

func (p *ActivityProcessor) GetType() string {
	return "activity"
}

// Process applies one event. Returning nil acks the stream message.
func (p *ActivityProcessor) Process(ctx context.Context, msg *queue.Message) error {
	var event model.CallEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil || event.ID == "" {
		// redelivery cannot fix a malformed payload
		logger.Error("[activity] dropping malformed event", "stream_id", msg.ID, "error", err)
		return nil
	}

	claim, err := p.idempotency.Acquire(ctx, event.ID)
	switch {
	case errors.Is(err, ErrAlreadyProcessed):
		logger.Debug("[activity] duplicate event skipped", "event_id", event.ID)
		return nil
	case errors.Is(err, ErrMaxRetriesExceeded):
		logger.Error("[activity] giving up on event", "event_id", event.ID, "error", err)
		return nil
	case err != nil:
		return err
	}

	if err := p.counters.Increment(ctx, event.OccurredAt.UTC().Format(activityDateLayout), activityFields(event)); err != nil {
		p.idempotency.Fail(ctx, claim, err)
		return fmt.Errorf("increment activity for %s: %w", event.ID, err)
	}

	if err := p.idempotency.Complete(ctx, claim); err != nil {
		// counters are already applied; a redelivery would double count
		logger.Error("[activity] failed to mark event processed", "event_id", event.ID, "error", err)
	}
	return nil
}

func activityFields(e model.CallEvent) map[string]int64 {
	fields := map[string]int64{
		"total":        1,
		string(e.Type): 1,
	}
	if e.AgentName != "" {
		fields[fmt.Sprintf("agent:%s:%s", e.AgentName, e.Type)] = 1
	}
	if e.Status != "" {
		fields["status:"+string(e.Status)] = 1
	}
	if e.Type == model.CallEventDayArchived && e.Count > 0 {
		fields["archived_calls"] = e.Count
	}
	return fields
}
