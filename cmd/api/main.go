package main

import (
	"os"
	"strings"

	"github.com/pura-ai/call-tracker/internal/config"
	"github.com/pura-ai/call-tracker/internal/handlers"
	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/pura-ai/call-tracker/internal/services"
	xhttp "github.com/pura-ai/call-tracker/pkg/http"
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
	logger.Info("starting call tracker api", "version", version, "commit", commit, "date", date, "env", cfg.AppEnv)

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.RecoverMiddleware)
	s.Use(xhttp.RequestIDMiddleware)
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(cfg.HttpRequestTimeout))

	db, err := repository.OpenDB(cfg.ReadDB(), cfg.WriteDB(), cfg.AppDebug)
	if err != nil {
		logger.Error("failed connecting to database", "driver", cfg.DBDriver, "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "call-tracker-api",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
		Name:          cfg.QueueName,
		ConsumerGroup: cfg.QueueConsumerGroup,
		MaxRetries:    cfg.QueueMaxRetries,
		MaxLen:        cfg.QueueMaxLen,
		EnableDLQ:     cfg.QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating event queue", "error", err)
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

	// repositories
	callRepo := repository.NewCallRepository(db)
	sessionRepo := repository.NewSessionRepository(redisAdap)
	activityRepo := repository.NewActivityRepository(redisAdap, cfg.ActivityRetention)

	// services
	callService := services.NewCallService(callRepo, queue.NewEventPublisher(q), services.ValidationOptions{
		ClinicRequired: cfg.CallsClinicRequired,
		StrictTime:     cfg.CallsStrictTime,
	})
	agentService := services.NewAgentService(sessionRepo, cfg.Admins(), cfg.SessionTTL)
	healthService := services.NewHealthService(map[string]services.Pinger{
		"database": db,
		"redis":    redisAdap,
	})

	// v1 handlers
	auth := handlers.NewAuthenticator(agentService)
	g := s.Router.Group("/api/v1")
	handlers.RegisterHealthRoutes(g, handlers.NewHealthHandler(healthService))
	handlers.RegisterAgentRoutes(g, auth, handlers.NewAgentHandler(agentService))
	handlers.RegisterCallRoutes(g, auth, handlers.NewCallHandler(callService))
	handlers.RegisterStatsRoutes(g, auth, handlers.NewStatsHandler(callService, activityRepo))

	done := s.CloseOnSignal()
	if err := s.ListenAndServe(cfg.HttpListenAddr); err != nil {
		logger.Error("error in running http-server", "error", err)
		return
	}
	<-done
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
