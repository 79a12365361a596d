package repository

import (
	"fmt"

	"github.com/pura-ai/call-tracker/pkg/pg"
)

// OpenDB connects to the record store. Postgres gets a read/write split and
// relies on goose migrations; sqlite shares one connection and is migrated in place.
func OpenDB(read, write pg.Config, debug bool) (*pg.DB, error) {
	if write.Driver != pg.DriverSqlite {
		return pg.CreateReadWrite(read, write, debug)
	}

	db, err := pg.Create(write, debug)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return pg.Wrap(db), nil
}
