package config

import (
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pura-ai/call-tracker/pkg/pg"
)

var config *Config

// DefaultAdminNames is used when ADMIN_NAMES is not set.
const DefaultAdminNames = "Chandan,Esmail"

// Config holds every configuration value of the call tracker. Only this
// struct must be used to read configuration; no direct access to the
// environment should be made elsewhere.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=call_tracker"`
	AppDebug            bool   `env:"APP_DEBUG,default=false"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=5s"`

	DBDriver   string `env:"DB_DRIVER,default=postgres"`
	SqlitePath string `env:"SQLITE_PATH,default=./calls.db"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=calltracker:"`

	PromNamespace string `env:"PROM_NAMESPACE,default=call_tracker"`

	QueueName              string        `env:"QUEUE_NAME,default=call-events"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=activity"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=3"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=50"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`

	ProcessorConsumers int           `env:"PROCESSOR_CONSUMERS,default=2"`
	ProcessorWorkers   int           `env:"PROCESSOR_WORKERS,default=8"`
	ActivityRetention  time.Duration `env:"ACTIVITY_RETENTION,default=2160h"`
	EventProcessedTTL  time.Duration `env:"EVENT_PROCESSED_TTL,default=24h"`
	EventLockTTL       time.Duration `env:"EVENT_LOCK_TTL,default=30s"`

	// comma separated, exact case-sensitive agent names
	AdminNames string        `env:"ADMIN_NAMES"`
	SessionTTL time.Duration `env:"SESSION_TTL,default=12h"`

	CallsClinicRequired bool `env:"CALLS_CLINIC_REQUIRED,default=true"`
	CallsStrictTime     bool `env:"CALLS_STRICT_TIME,default=false"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}
	if strings.TrimSpace(c.AdminNames) == "" {
		c.AdminNames = DefaultAdminNames
	}

	config = c
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the loaded configuration; used by tests and tools.
func Set(c *Config) {
	config = c
}

// Admins returns the allow-list of administrator names.
func (c *Config) Admins() []string {
	var names []string
	for _, n := range strings.Split(c.AdminNames, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func (c *Config) ReadDB() pg.Config {
	if c.DBDriver == pg.DriverSqlite {
		return pg.Config{Driver: pg.DriverSqlite, Path: c.SqlitePath}
	}
	return pg.Config{
		Driver:   pg.DriverPostgres,
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func (c *Config) WriteDB() pg.Config {
	if c.DBDriver == pg.DriverSqlite {
		return pg.Config{Driver: pg.DriverSqlite, Path: c.SqlitePath}
	}
	return pg.Config{
		Driver:   pg.DriverPostgres,
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}
