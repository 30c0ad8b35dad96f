package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agency-budget-go/internal/config"
	"agency-budget-go/internal/db"
	"agency-budget-go/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewFromEnv()

		cfg, err := config.Load(log)
		if err != nil {
			return err
		}
		if cfg.DB.Driver == db.DriverMemory {
			return fmt.Errorf("migrate: the memory driver has no schema")
		}

		conn, err := db.Open(cfg.DB, log)
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := conn.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()

		if err := db.Migrate(conn, cfg.DB.Driver); err != nil {
			return err
		}
		log.Info("migrate: schema is up to date", "driver", cfg.DB.Driver)
		return nil
	},
}
