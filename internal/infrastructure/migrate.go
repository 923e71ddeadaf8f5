package infrastructure

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"cableops.io/dashboard/internal/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded SQL migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info("Database migrations completed", zap.Int64("version", version))
	return nil
}

// Migrate applies the embedded migrations on the shared pool.
func (c *DatabaseClients) Migrate(ctx context.Context) error {
	return Migrate(ctx, c.DB)
}

// gooseLogger routes goose progress output through zap.
type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Fatal(fmt.Sprintf(format, v...))
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Info(fmt.Sprintf(format, v...))
}
