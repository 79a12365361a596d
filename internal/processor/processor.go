package processor

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/prom"
	"github.com/pura-ai/call-tracker/pkg/redis"
	"github.com/pura-ai/call-tracker/pkg/worker"
)

const ProcessingTimeout = time.Second * 5
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// pending messages above this are reported as lag
const lagWarningThreshold = 10_000

// Processor applies one stream message.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

type ServiceConfig struct {
	Queue     queue.QueueConfig
	Consumers int
	Workers   int
}

// ProcessorService reads the event stream with a set of consumers and hands
// every message to a worker pool.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	config    ServiceConfig
	processor Processor
	queues    []*queue.Queue
	metrics   *ServiceMetrics
	worker    *worker.WorkerManager
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewProcessorService(adapter redis.RedisAdapter, processor Processor, cfg ServiceConfig) *ProcessorService {
	if cfg.Consumers < 1 {
		cfg.Consumers = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Queue.ConsumerName == "" {
		cfg.Queue.ConsumerName = fmt.Sprintf("processor-%d", os.Getpid())
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProcessorService{
		adapter:   adapter,
		config:    cfg,
		processor: processor,
		metrics:   NewServiceMetrics(),
		worker:    worker.NewWorkerManager(cfg.Workers*4, cfg.Workers, nil),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *ProcessorService) Start() error {
	logger.Info("[processor] starting", "processor", s.processor.GetType(), "consumers", s.config.Consumers, "workers", s.config.Workers)

	s.worker.SetWorker(s.workerHandler)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(s.ctx); err != nil {
			logger.Info("[processor] worker pool stopped", "reason", err)
		}
	}()

	for i := 0; i < s.config.Consumers; i++ {
		qc := s.config.Queue
		qc.ConsumerName = fmt.Sprintf("%s-%d", qc.ConsumerName, i)

		q, err := queue.NewQueue(s.adapter, qc)
		if err != nil {
			return fmt.Errorf("failed to create consumer %d: %w", i, err)
		}
		if err := q.Consume(s.messageHandler); err != nil {
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}
		s.queues = append(s.queues, q)
	}

	s.wg.Add(2)
	go s.every(HealthInterval, s.reportMetrics)
	go s.every(HealthInterval, s.performHealthCheck)

	return nil
}

func (s *ProcessorService) every(d time.Duration, fn func()) {
	defer s.wg.Done()

	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	snap := s.metrics.Snapshot()
	logger.Info("[processor] metrics",
		"total_processed", snap.Processed,
		"total_failed", snap.Failed,
		"rate_per_second", snap.RatePerSecond,
		"avg_duration_ms", snap.AvgDuration.Milliseconds(),
		"uptime_seconds", int64(snap.Uptime.Seconds()),
		"backlog", s.worker.GetUnreadCount())
}

func (s *ProcessorService) performHealthCheck() {
	ctx, cancel := context.WithTimeout(s.ctx, ProcessingTimeout)
	defer cancel()

	if err := s.adapter.Ping(ctx); err != nil {
		logger.Error("[processor] health check failed: redis unreachable", "error", err)
		return
	}
	if len(s.queues) == 0 {
		return
	}
	stats, err := s.queues[0].GetStats(ctx)
	if err != nil {
		logger.Warn("[processor] queue stats unavailable", "error", err)
		return
	}
	if stats.PendingMessages > lagWarningThreshold {
		logger.Warn("[processor] queue has high lag", "queue", s.queues[0].Name(), "pending_messages", stats.PendingMessages)
	}
}

// Stop stops consuming, drains the workers and waits for background tasks.
func (s *ProcessorService) Stop() {
	logger.Info("[processor] shutting down")

	var qwg sync.WaitGroup
	for i, q := range s.queues {
		qwg.Add(1)
		go func(index int, q *queue.Queue) {
			defer qwg.Done()
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("[processor] error stopping consumer", "consumer", index, "error", err)
			}
		}(i, q)
	}
	qwg.Wait()

	s.cancel()
	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()
	logger.Info("[processor] stopped")
}

type job struct {
	ctx    context.Context
	msg    *queue.Message
	result chan error
}

// messageHandler blocks the consumer until a worker has processed msg, so the
// ack decision stays with the queue.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	jobCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout+time.Second)
	defer cancel()

	j := &job{ctx: jobCtx, msg: msg, result: make(chan error, 1)}
	if err := s.worker.Enqueue(jobCtx, j); err != nil {
		return fmt.Errorf("enqueue message %s: %w", msg.ID, err)
	}

	select {
	case err := <-j.result:
		return err
	case <-jobCtx.Done():
		return fmt.Errorf("timeout waiting for worker to process message: %w", jobCtx.Err())
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, payload interface{}) {
	j, ok := payload.(*job)
	if !ok {
		logger.Error("[processor] invalid job type", "worker", workerIndex)
		return
	}
	if j.ctx.Err() != nil {
		logger.Warn("[processor] job expired before processing", "worker", workerIndex, "stream_id", j.msg.ID)
		return
	}

	start := time.Now()
	err := s.processor.Process(j.ctx, j.msg)
	elapsed := time.Since(start)

	eventType := j.msg.Metadata["type"]
	if err != nil {
		s.metrics.RecordFailure()
		prom.AddEventProcessed(eventType, "failed", elapsed.Seconds())
		logger.Error("[processor] failed to process message", "worker", workerIndex, "stream_id", j.msg.ID, "error", err)
	} else {
		s.metrics.RecordSuccess(elapsed)
		prom.AddEventProcessed(eventType, "ok", elapsed.Seconds())
	}

	// result is buffered, so this never blocks
	j.result <- err
}

func (s *ProcessorService) Metrics() *ServiceMetrics {
	return s.metrics
}
