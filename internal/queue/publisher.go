package queue

import (
	"context"

	"github.com/pura-ai/call-tracker/internal/model"
)

const metaEventType = "type"

// EventPublisher writes call events onto the stream.
type EventPublisher struct {
	queue *Queue
}

func NewEventPublisher(q *Queue) *EventPublisher {
	return &EventPublisher{queue: q}
}

func (p *EventPublisher) Publish(ctx context.Context, event model.CallEvent) error {
	_, err := p.queue.PublishJSON(ctx, event, map[string]string{metaEventType: string(event.Type)})
	return err
}
