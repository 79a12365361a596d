package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/redis"
)

type Message struct {
	ID        string
	Data      []byte
	Metadata  map[string]string
	Timestamp time.Time
	Attempts  int
	acked     bool
	queue     *Queue
}

// Ack marks the message as processed.
func (m *Message) Ack(ctx context.Context) error {
	if m.acked {
		return fmt.Errorf("message already acknowledged")
	}
	m.acked = true
	return m.queue.ackMessage(ctx, m.ID)
}

// MessageHandler processes one message.
// Return values:
//   - nil: the message is acked
//   - error: the message stays pending and is reclaimed after VisibilityTimeout
type MessageHandler func(ctx context.Context, msg *Message) error

type QueueConfig struct {
	Name              string
	ConsumerGroup     string
	ConsumerName      string
	MaxRetries        int
	VisibilityTimeout time.Duration
	PollInterval      time.Duration
	BatchSize         int64
	MaxLen            int64
	EnableDLQ         bool
}

type Queue struct {
	adapter    redis.RedisAdapter
	config     QueueConfig
	handler    MessageHandler
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	processing map[string]*Message
}

type QueueStats struct {
	TotalMessages   int64
	PendingMessages int64
	ConsumerCount   int64
}

// NewQueue creates a new queue instance
func NewQueue(adapter redis.RedisAdapter, config QueueConfig) (*Queue, error) {
	if config.Name == "" {
		return nil, fmt.Errorf("queue name is required")
	}
	if config.ConsumerGroup == "" {
		config.ConsumerGroup = "default-group"
	}
	if config.ConsumerName == "" {
		config.ConsumerName = fmt.Sprintf("consumer-%d", time.Now().UnixNano())
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.VisibilityTimeout == 0 {
		config.VisibilityTimeout = 30 * time.Second
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 10
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		adapter:    adapter,
		config:     config,
		ctx:        ctx,
		cancel:     cancel,
		processing: make(map[string]*Message),
	}

	if err := q.initConsumerGroup(ctx); err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		cancel()
		return nil, fmt.Errorf("create consumer group %s: %w", config.ConsumerGroup, err)
	}

	return q, nil
}

func (q *Queue) initConsumerGroup(ctx context.Context) error {
	return q.adapter.XGroupCreateMkStream(ctx, q.config.Name, q.config.ConsumerGroup, "0")
}

func (q *Queue) Name() string {
	return q.config.Name
}

// Publish adds a message to the queue
func (q *Queue) Publish(ctx context.Context, data []byte, metadata map[string]string) (string, error) {
	values := map[string]interface{}{
		"data":      string(data),
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}

	for k, v := range metadata {
		values["meta_"+k] = v
	}

	id, err := q.adapter.XAdd(ctx, q.config.Name, values)
	if err != nil {
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	if q.config.MaxLen > 0 {
		if err := q.adapter.XTrimApprox(ctx, q.config.Name, q.config.MaxLen); err != nil {
			logger.Warn("[queue] trim failed", "queue", q.config.Name, "error", err)
		}
	}

	return id, nil
}

// PublishJSON publishes a JSON-encoded message
func (q *Queue) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return q.Publish(ctx, jsonData, metadata)
}

// Consume starts polling the stream; messages are handed to handler one at a time.
func (q *Queue) Consume(handler MessageHandler) error {
	if handler == nil {
		return fmt.Errorf("message handler is required")
	}

	q.handler = handler
	q.wg.Add(1)

	go q.consumeLoop()

	return nil
}

func (q *Queue) consumeLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.processMessages()
			q.claimStuckMessages()
		}
	}
}

func (q *Queue) processMessages() {
	messages, err := q.adapter.XReadGroup(q.ctx, q.config.ConsumerGroup, q.config.ConsumerName, q.config.Name, ">", q.config.BatchSize)
	if err != nil {
		if !errors.Is(err, redis.NilError) && q.ctx.Err() == nil {
			logger.Warn("[queue] read failed", "queue", q.config.Name, "error", err)
		}
		return
	}

	for _, streamMsg := range messages {
		msg := q.streamMessageToMessage(streamMsg)
		msg.Attempts = 1
		q.handleMessage(msg)
	}
}

// claimStuckMessages takes over messages another consumer (or a failed
// handler) left pending longer than VisibilityTimeout.
func (q *Queue) claimStuckMessages() {
	pending, err := q.adapter.XPending(q.ctx, q.config.Name, q.config.ConsumerGroup)
	if err != nil || pending == nil || pending.Count == 0 {
		return
	}

	pendingExt, err := q.adapter.XPendingExt(q.ctx, q.config.Name, q.config.ConsumerGroup, "-", "+", 100)
	if err != nil || len(pendingExt) == 0 {
		return
	}

	deliveries := make(map[string]int64)
	var idsToReclaim []string
	for _, msg := range pendingExt {
		if msg.Idle >= q.config.VisibilityTimeout {
			idsToReclaim = append(idsToReclaim, msg.ID)
			deliveries[msg.ID] = msg.RetryCount
		}
	}

	if len(idsToReclaim) == 0 {
		return
	}

	messages, err := q.adapter.XClaim(q.ctx, q.config.Name, q.config.ConsumerGroup, q.config.ConsumerName, q.config.VisibilityTimeout, idsToReclaim...)
	if err != nil {
		logger.Warn("[queue] claim failed", "queue", q.config.Name, "error", err)
		return
	}

	for _, streamMsg := range messages {
		msg := q.streamMessageToMessage(streamMsg)
		// XCLAIM itself counts as one more delivery
		msg.Attempts = int(deliveries[msg.ID]) + 1
		q.handleMessage(msg)
	}
}

func (q *Queue) handleMessage(msg *Message) {
	q.mu.Lock()
	q.processing[msg.ID] = msg
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		delete(q.processing, msg.ID)
		q.mu.Unlock()
	}()

	if msg.Attempts > q.config.MaxRetries {
		logger.Warn("[queue] max retries exceeded", "queue", q.config.Name, "id", msg.ID, "attempts", msg.Attempts)
		q.moveToDeadLetterQueue(msg)
		_ = msg.Ack(q.ctx)
		return
	}

	ctx, cancel := context.WithTimeout(q.ctx, q.config.VisibilityTimeout)
	defer cancel()

	if err := q.handler(ctx, msg); err != nil {
		logger.Warn("[queue] handler failed, message stays pending", "queue", q.config.Name, "id", msg.ID, "error", err)
		return
	}
	if !msg.acked {
		if err := msg.Ack(q.ctx); err != nil {
			logger.Error("[queue] ack failed", "queue", q.config.Name, "id", msg.ID, "error", err)
		}
	}
}

func (q *Queue) ackMessage(ctx context.Context, messageID string) error {
	return q.adapter.XAck(ctx, q.config.Name, q.config.ConsumerGroup, messageID)
}

func (q *Queue) moveToDeadLetterQueue(msg *Message) {
	if !q.config.EnableDLQ {
		return
	}

	values := map[string]interface{}{
		"data":           string(msg.Data),
		"original_id":    msg.ID,
		"attempts":       msg.Attempts,
		"failed_at":      time.Now().UTC().Format(time.RFC3339),
		"original_queue": q.config.Name,
	}

	for k, v := range msg.Metadata {
		values["meta_"+k] = v
	}

	if _, err := q.adapter.XAdd(q.ctx, q.DeadLetterName(), values); err != nil {
		logger.Error("[queue] dead letter publish failed", "queue", q.config.Name, "id", msg.ID, "error", err)
	}
}

func (q *Queue) DeadLetterName() string {
	return q.config.Name + ":dlq"
}

func (q *Queue) streamMessageToMessage(streamMsg redis.StreamMessage) *Message {
	msg := &Message{
		ID:       streamMsg.ID,
		Metadata: make(map[string]string),
		queue:    q,
	}

	for k, v := range streamMsg.Values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch {
		case k == "data":
			msg.Data = []byte(s)
		case k == "timestamp":
			if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
				msg.Timestamp = ts
			}
		case strings.HasPrefix(k, "meta_"):
			msg.Metadata[k[5:]] = s
		}
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	return msg
}

func (q *Queue) Stop(timeout time.Duration) error {
	q.cancel()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for queue to stop")
	}
}

func (q *Queue) GetStats(ctx context.Context) (*QueueStats, error) {
	totalMessages, err := q.adapter.XLen(ctx, q.config.Name)
	if err != nil {
		return nil, err
	}

	stats := &QueueStats{
		TotalMessages: totalMessages,
	}

	pending, err := q.adapter.XPending(ctx, q.config.Name, q.config.ConsumerGroup)
	if err == nil && pending != nil {
		stats.PendingMessages = pending.Count
		stats.ConsumerCount = int64(len(pending.Consumers))
	}

	return stats, nil
}
