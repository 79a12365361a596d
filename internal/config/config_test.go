package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pura-ai/call-tracker/pkg/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "DB_DRIVER=sqlite\nSQLITE_PATH=/tmp/test-calls.db\nADMIN_NAMES= Chandan , Esmail,Noura \nSESSION_TTL=2h\nCALLS_STRICT_TIME=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"DB_DRIVER", "SQLITE_PATH", "ADMIN_NAMES", "SESSION_TTL", "CALLS_STRICT_TIME"} {
			os.Unsetenv(k)
		}
	})

	require.NoError(t, Load(path))
	c := Get()

	assert.Equal(t, []string{"Chandan", "Esmail", "Noura"}, c.Admins())
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.True(t, c.CallsStrictTime)
	assert.True(t, c.CallsClinicRequired)
	assert.Equal(t, pg.Config{Driver: pg.DriverSqlite, Path: "/tmp/test-calls.db"}, c.WriteDB())
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestAdmins_Default(t *testing.T) {
	c := &Config{AdminNames: DefaultAdminNames}
	assert.Equal(t, []string{"Chandan", "Esmail"}, c.Admins())
}

func TestReadDB_Postgres(t *testing.T) {
	c := &Config{
		DBDriver:             pg.DriverPostgres,
		PostgresReadHost:     "replica",
		PostgresReadPort:     "5432",
		PostgresReadUser:     "reader",
		PostgresReadPassword: "secret",
		PostgresReadDatabase: "calls",
	}
	assert.Equal(t, pg.Config{
		Driver:   pg.DriverPostgres,
		Host:     "replica",
		Port:     "5432",
		User:     "reader",
		Password: "secret",
		Database: "calls",
	}, c.ReadDB())
}
