package main

import (
	"github.com/Spok95/stock-intake/internal/config"
	"github.com/Spok95/stock-intake/internal/infra/db"
	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/spf13/cobra"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply goose migrations to postgres.dsn",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.DSN == "" {
				return errNoPostgres
			}
			log := logger.New(cfg.App.Env)
			if err := db.Migrate(cfg.Postgres.DSN, cfg.Postgres.Migrations); err != nil {
				log.Error("migrations failed", "err", err)
				return err
			}
			log.Info("migrations applied", "dir", cfg.Postgres.Migrations)
			return nil
		},
	}
}
