package pg

import (
	"context"
	"fmt"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/pura-ai/call-tracker/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration found in dir of fsys.
func Migrate(ctx context.Context, cfg Config, fsys fs.FS, dir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = goose.UpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("[pg] schema is up to date", "version", version)
	return nil
}
