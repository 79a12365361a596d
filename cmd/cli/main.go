package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pura-ai/call-tracker/internal/config"
	"github.com/pura-ai/call-tracker/internal/queue"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/pura-ai/call-tracker/internal/services"
	"github.com/pura-ai/call-tracker/migrations"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/pg"
	"github.com/pura-ai/call-tracker/pkg/redis"
)

const usage = `usage: cli [--env=path] <command> [flags]

commands:
  migrate       apply pending schema migrations
  archive-day   hide every active call from the current-day view
  export        write all calls to a file (--format=csv|xlsx --out=dir)
`

const commandTimeout = 2 * time.Minute

func main() {
	defer logger.Sync()

	args := os.Args[1:]
	envPath := ""
	if len(args) > 0 && strings.HasPrefix(args[0], "--env=") {
		envPath = strings.TrimPrefix(args[0], "--env=")
		args = args[1:]
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := config.Load(envPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch args[0] {
	case "migrate":
		err = migrate(ctx)
	case "archive-day":
		err = archiveDay(ctx)
	case "export":
		err = exportCalls(ctx, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context) error {
	cfg := config.Get()
	if cfg.DBDriver == pg.DriverSqlite {
		_, err := repository.OpenDB(cfg.ReadDB(), cfg.WriteDB(), false)
		return err
	}
	return pg.Migrate(ctx, cfg.WriteDB(), migrations.FS, ".")
}

func archiveDay(ctx context.Context) error {
	svc, err := newCallService()
	if err != nil {
		return err
	}
	n, err := svc.ArchiveDay(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("archived %d calls\n", n)
	return nil
}

func exportCalls(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "csv", "csv or xlsx")
	out := fs.String("out", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := newCallService()
	if err != nil {
		return err
	}

	var (
		body     []byte
		fileName string
	)
	switch *format {
	case "csv":
		res, err := svc.Export(ctx)
		if err != nil {
			return err
		}
		body, fileName = []byte(res.Content), res.FileName
	case "xlsx":
		body, fileName, err = svc.ExportXLSX(ctx)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", *format)
	}

	path := filepath.Join(*out, fileName)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Println(path)
	return nil
}

// newCallService publishes events only when redis is reachable.
func newCallService() (*services.CallService, error) {
	cfg := config.Get()
	db, err := repository.OpenDB(cfg.ReadDB(), cfg.WriteDB(), false)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var publisher services.EventPublisher
	redisAdap, err := redis.NewRedisAdapter("default", cfg.RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{cfg.RedisAddr},
		ClientName: "call-tracker-cli",
		DB:         cfg.RedisDatabase,
		Username:   cfg.RedisUsername,
		Password:   cfg.RedisPassword,
	})
	if err != nil {
		logger.Warn("redis unavailable, events will not be published", "error", err)
	} else {
		q, err := queue.NewQueue(redisAdap, queue.QueueConfig{
			Name:          cfg.QueueName,
			ConsumerGroup: cfg.QueueConsumerGroup,
			MaxLen:        cfg.QueueMaxLen,
		})
		if err != nil {
			logger.Warn("event queue unavailable", "error", err)
		} else {
			publisher = queue.NewEventPublisher(q)
		}
	}

	return services.NewCallService(repository.NewCallRepository(db), publisher, services.ValidationOptions{
		ClinicRequired: cfg.CallsClinicRequired,
		StrictTime:     cfg.CallsStrictTime,
	}), nil
}
