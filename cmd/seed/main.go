// Package main seeds reference data and, on request, demo history.
//
// Every step is idempotent: rows that already exist are left alone, so the
// command can run on every deploy.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/infrastructure"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/pkg/worker"
)

// adminPasswordEnv supplies the admin password when the flag is absent.
const adminPasswordEnv = "SEED_ADMIN_PASSWORD"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Seed reference data and demo history into the dashboard database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.AdminPassword == "" {
				opts.AdminPassword = os.Getenv(adminPasswordEnv)
			}
			if opts.DemoDays < 0 {
				return fmt.Errorf("--demo-days must not be negative")
			}
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.AdminUsername, "admin-username", "admin", "username of the seeded admin account")
	f.StringVar(&opts.AdminEmail, "admin-email", "admin@localhost", "email of the seeded admin account")
	f.StringVar(&opts.AdminPassword, "admin-password", "", "admin password (falls back to "+adminPasswordEnv+")")
	f.IntVar(&opts.DemoDays, "demo-days", 0, "days of demo production history to generate per machine")
	f.IntVar(&opts.Workers, "workers", 0, "concurrent history generators (default: worker.general_pool_size)")
	return cmd
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if opts.Workers <= 0 {
		opts.Workers = cfg.Worker.GeneralPoolSize
	}
	pool, err := worker.NewPool(worker.PoolConfig{Name: "seed", Size: opts.Workers})
	if err != nil {
		return fmt.Errorf("init worker pool: %w", err)
	}
	defer pool.Shutdown(30 * time.Second)

	logger.Info("Starting data seeding...",
		zap.Int("demo_days", opts.DemoDays),
		zap.Int("workers", opts.Workers),
	)

	s := newSeeder(db.Gorm, cfg.Dashboard, cfg.Pricing)
	if err := s.Run(ctx, opts, pool); err != nil {
		return err
	}

	logger.Info("Data seeding completed successfully")
	return nil
}
