// Package audit implements the audit logging service.
//
// Audit logs are append-only records of every successful write. A record
// is written through the caller's transaction, so it commits or rolls back
// with the change it describes.
package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// SystemActor is recorded when a write has no authenticated user.
const SystemActor = "system"

type actorKey struct{}

// WithActor returns a context naming the user behind subsequent writes.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor carried by ctx, or SystemActor.
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}

// Logger writes audit records to the database.
type Logger struct {
	db *gorm.DB
}

// NewLogger creates a new audit Logger.
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// LogAction records an auditable action by the actor in ctx.
func (l *Logger) LogAction(ctx context.Context, action, resourceType, resourceID string, details map[string]interface{}) error {
	record := models.AuditLog{
		ID:           generateAuditID(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Actor:        ActorFrom(ctx),
		Details:      datatypes.JSONMap(details),
	}
	if err := repository.DB(ctx, l.db).Create(&record).Error; err != nil {
		logger.Error("Failed to write audit log",
			zap.String("action", action),
			zap.String("resource_type", resourceType),
			zap.String("resource_id", resourceID),
			zap.Error(err),
		)
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// LogStatusChange records a status transition of a machine, work order or task.
func (l *Logger) LogStatusChange(ctx context.Context, resourceType, resourceID, from, to string) error {
	return l.LogAction(ctx, resourceType+".status_changed", resourceType, resourceID, map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// Recent returns the newest audit records, newest first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := repository.DB(ctx, l.db).
		Scopes(repository.Limit(limit)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func generateAuditID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return fmt.Sprintf("audit-%s", id.String())
}
