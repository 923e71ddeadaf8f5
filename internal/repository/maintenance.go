package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

// TaskFilter narrows the maintenance task list.
type TaskFilter struct {
	MachineID string
	Status    domain.MaintenanceStatus
	Type      domain.MaintenanceType
	Assignee  string
	Limit     int
}

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

// List returns tasks by priority (1 first), newest first within a priority.
func (r *MaintenanceRepository) List(ctx context.Context, f TaskFilter) ([]models.MaintenanceTask, error) {
	var rows []models.MaintenanceTask
	err := DB(ctx, r.db).
		Scopes(
			ByMachine(f.MachineID),
			Equals("status", string(f.Status)),
			Equals("type", string(f.Type)),
			ContainsFold("assignee", f.Assignee),
			Limit(f.Limit),
		).
		Order("priority ASC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *MaintenanceRepository) Get(ctx context.Context, id string) (*models.MaintenanceTask, error) {
	var t models.MaintenanceTask
	if err := DB(ctx, r.db).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *MaintenanceRepository) Create(ctx context.Context, t *models.MaintenanceTask) error {
	return DB(ctx, r.db).Create(t).Error
}

func (r *MaintenanceRepository) Save(ctx context.Context, t *models.MaintenanceTask) error {
	return DB(ctx, r.db).Save(t).Error
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id string) error {
	return DB(ctx, r.db).Delete(&models.MaintenanceTask{}, "id = ?", id).Error
}

// NextID returns MT-{seq:04d} with seq one past the row count.
func (r *MaintenanceRepository) NextID(ctx context.Context) (string, error) {
	return nextSequence(ctx, r.db, &models.MaintenanceTask{}, func(n int64) string {
		return fmt.Sprintf("MT-%04d", n)
	})
}

// CreateNumbered stores t under the next free MT-{seq} id.
func (r *MaintenanceRepository) CreateNumbered(ctx context.Context, t *models.MaintenanceTask) error {
	return createNumbered(ctx, r.db, t, func(id string) { t.ID = id }, r.NextID)
}

// CreatedIn returns the tasks created inside w.
func (r *MaintenanceRepository) CreatedIn(ctx context.Context, w domain.Window) ([]models.MaintenanceTask, error) {
	var rows []models.MaintenanceTask
	err := DB(ctx, r.db).Scopes(InWindow("created_at", &w)).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// CountOpen counts tasks that are pending or in progress.
func (r *MaintenanceRepository) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.MaintenanceTask{}).
		Where("status IN ?", []string{string(domain.MaintenancePending), string(domain.MaintenanceInProgress)}).
		Count(&n).Error
	return n, err
}
