package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pura-ai/call-tracker/internal/config"
	"github.com/pura-ai/call-tracker/internal/processor"
	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/prom"
	"github.com/pura-ai/call-tracker/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	defer logger.Sync()

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}
	cfg := config.Get()
	logger.Info("starting call event processor", "version", version, "commit", commit, "date", date)

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "call-tracker-processor",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if err = prom.Create(hostname, cfg.AppEnv, cfg.PromNamespace); err != nil {
		logger.Error("failed to create prometheus metrics", "error", err)
		return
	}
	if cfg.AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(cfg.AppDebugMetricsAddr, cfg.AppDebugMetricsURI)
	}

	idempotencyConfig := processor.DefaultIdempotencyConfig()
	idempotencyConfig.LockTTL = cfg.EventLockTTL
	idempotencyConfig.ProcessedTTL = cfg.EventProcessedTTL
	idempotencyConfig.MaxRetries = cfg.QueueMaxRetries

	activity := processor.NewActivityProcessor(
		repository.NewActivityRepository(redisAdap, cfg.ActivityRetention),
		processor.NewIdempotencyService(redisAdap, idempotencyConfig),
	)

	consumerName := cfg.QueueConsumerName
	if consumerName == "" {
		consumerName = hostname
	}
	service := processor.NewProcessorService(redisAdap, activity, processor.ServiceConfig{
		Queue: queue.QueueConfig{
			Name:              cfg.QueueName,
			ConsumerGroup:     cfg.QueueConsumerGroup,
			ConsumerName:      consumerName,
			MaxRetries:        cfg.QueueMaxRetries,
			VisibilityTimeout: cfg.QueueVisibilityTimeout,
			PollInterval:      cfg.QueuePollInterval,
			BatchSize:         cfg.QueueBatchSize,
			MaxLen:            cfg.QueueMaxLen,
			EnableDLQ:         cfg.QueueEnableDLQ,
		},
		Consumers: cfg.ProcessorConsumers,
		Workers:   cfg.ProcessorWorkers,
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	if err := service.Start(); err != nil {
		logger.Error("failed to start processor", "error", err)
		service.Stop()
		return
	}

	<-c
	service.Stop()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.HasPrefix(v, "--env=") {
			p := strings.TrimPrefix(v, "--env=")
			if _, err := os.Stat(p); err != nil {
				logger.Error("failed to open the passed env file", "path", p, "error", err)
				return ""
			}
			return p
		}
	}
	return ""
}
