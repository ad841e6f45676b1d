package main

import (
	"fmt"
	"os"

	"github.com/inboxai/inboxd/internal/config"
	"github.com/inboxai/inboxd/internal/db"
	"github.com/inboxai/inboxd/internal/logger"
)

func runMigrate() error {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(cfg.Log.Level, cfg.Log.Format)

	if err := db.Migrate(cfg.Postgres); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrations applied")
	return nil
}
