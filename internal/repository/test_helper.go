package repository

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/pura-ai/call-tracker/pkg/pg"
	"github.com/pura-ai/call-tracker/pkg/redis"
	"github.com/stretchr/testify/require"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

// SetupTestDB opens an in-memory sqlite database with the calls table.
func SetupTestDB(t testing.TB) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// every pooled connection would get its own in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	return &testDB{
		DB:    pg.Wrap(db),
		rawDB: db,
	}
}

// SetupTestRedis returns an adapter backed by miniredis.
func SetupTestRedis(t testing.TB) (redis.RedisAdapter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	adapter, err := redis.NewRedisAdapter(t.Name()+"@"+mr.Addr(), "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)
	return adapter, mr
}

func ptr[T any](v T) *T {
	return &v
}
