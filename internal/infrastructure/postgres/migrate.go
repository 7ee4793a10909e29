package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const embeddedDir = "migrations"

// Migrate runs a goose command (up, down, status, ...) against the pool.
// An empty dir uses the migrations compiled into the binary.
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir, command string, args ...string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if dir == "" {
		goose.SetBaseFS(embeddedMigrations)
		dir = embeddedDir
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
