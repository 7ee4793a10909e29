package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/ricemill-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/ricemill-ledger/pkg/config"
	"github.com/jhoicas/ricemill-ledger/pkg/logger"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|redo|reset|up-to|down-to")
	dir := flag.String("dir", "", "migrations directory on disk; empty uses the embedded set")
	version := flag.String("version", "", "target version for up-to and down-to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *dir == "" {
		*dir = cfg.DB.MigrationsDir
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, App: cfg.App.Name}).Named("migrate")

	var args []string
	switch *cmd {
	case "up-to", "down-to":
		if *version == "" {
			fmt.Fprintf(os.Stderr, "missing -version for %s\n", *cmd)
			os.Exit(1)
		}
		args = append(args, *version)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to postgres")
	}
	defer pool.Close()

	log.Info().Str("cmd", *cmd).Str("dir", *dir).Msg("migrate ready")

	if err := postgres.Migrate(ctx, pool, *dir, *cmd, args...); err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migration failed")
		pool.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migration complete")
}
