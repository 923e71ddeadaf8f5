package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

// FactRepository reads and appends the timestamped shop-floor logs:
// production, downtime, quality, scrap and emulsion.
type FactRepository struct {
	db *gorm.DB
}

func NewFactRepository(db *gorm.DB) *FactRepository {
	return &FactRepository{db: db}
}

// listFacts returns rows of T newest first.
func listFacts[T any](ctx context.Context, db *gorm.DB, f LogFilter, cols factColumns, withOperator bool) ([]T, error) {
	q := DB(ctx, db).Scopes(f.scopes(cols)...)
	if withOperator {
		q = q.Preload("Operator")
	}
	var rows []T
	err := q.Order("timestamp DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// factsIn returns every row of T inside w, optionally for one machine.
func factsIn[T any](ctx context.Context, db *gorm.DB, w domain.Window, machineID string) ([]T, error) {
	var rows []T
	err := DB(ctx, db).
		Scopes(InWindow("timestamp", &w), ByMachine(machineID)).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

func create(ctx context.Context, db *gorm.DB, row interface{}) error {
	return DB(ctx, db).Omit(clause.Associations).Create(row).Error
}

func (r *FactRepository) ListProduction(ctx context.Context, f LogFilter) ([]models.ProductionLog, error) {
	return listFacts[models.ProductionLog](ctx, r.db, f, factColumns{}, true)
}

func (r *FactRepository) CreateProduction(ctx context.Context, log *models.ProductionLog) error {
	return create(ctx, r.db, log)
}

func (r *FactRepository) ProductionIn(ctx context.Context, w domain.Window, machineID string) ([]models.ProductionLog, error) {
	return factsIn[models.ProductionLog](ctx, r.db, w, machineID)
}

// ProductionForMachinesIn returns production logs in w for any of machineIDs.
func (r *FactRepository) ProductionForMachinesIn(ctx context.Context, w domain.Window, machineIDs []string) ([]models.ProductionLog, error) {
	if len(machineIDs) == 0 {
		return nil, nil
	}
	var rows []models.ProductionLog
	err := DB(ctx, r.db).
		Scopes(InWindow("timestamp", &w)).
		Where("machine_id IN ?", machineIDs).
		Order("timestamp ASC").
		Find(&rows).Error
	return rows, err
}

// CountProductionIn counts production logs in w.
func (r *FactRepository) CountProductionIn(ctx context.Context, w domain.Window) (int64, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.ProductionLog{}).Scopes(InWindow("timestamp", &w)).Count(&n).Error
	return n, err
}

func (r *FactRepository) ListDowntime(ctx context.Context, f LogFilter) ([]models.DowntimeLog, error) {
	return listFacts[models.DowntimeLog](ctx, r.db, f, factColumns{typ: "downtime_type", flag: "is_planned"}, true)
}

func (r *FactRepository) CreateDowntime(ctx context.Context, log *models.DowntimeLog) error {
	return create(ctx, r.db, log)
}

func (r *FactRepository) DowntimeIn(ctx context.Context, w domain.Window, machineID string) ([]models.DowntimeLog, error) {
	return factsIn[models.DowntimeLog](ctx, r.db, w, machineID)
}

func (r *FactRepository) ListQuality(ctx context.Context, f LogFilter) ([]models.QualityCheck, error) {
	return listFacts[models.QualityCheck](ctx, r.db, f, factColumns{flag: "passed"}, true)
}

func (r *FactRepository) GetQuality(ctx context.Context, id uint) (*models.QualityCheck, error) {
	var qc models.QualityCheck
	if err := DB(ctx, r.db).Preload("Operator").First(&qc, id).Error; err != nil {
		return nil, err
	}
	return &qc, nil
}

func (r *FactRepository) CreateQuality(ctx context.Context, qc *models.QualityCheck) error {
	return create(ctx, r.db, qc)
}

func (r *FactRepository) QualityIn(ctx context.Context, w domain.Window, machineID string) ([]models.QualityCheck, error) {
	return factsIn[models.QualityCheck](ctx, r.db, w, machineID)
}

func (r *FactRepository) ListScrap(ctx context.Context, f LogFilter) ([]models.ScrapEntry, error) {
	return listFacts[models.ScrapEntry](ctx, r.db, f, factColumns{typ: "scrap_type"}, true)
}

func (r *FactRepository) GetScrap(ctx context.Context, id uint) (*models.ScrapEntry, error) {
	var e models.ScrapEntry
	if err := DB(ctx, r.db).Preload("Operator").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *FactRepository) CreateScrap(ctx context.Context, e *models.ScrapEntry) error {
	return create(ctx, r.db, e)
}

func (r *FactRepository) ScrapIn(ctx context.Context, w domain.Window, machineID string) ([]models.ScrapEntry, error) {
	return factsIn[models.ScrapEntry](ctx, r.db, w, machineID)
}

func (r *FactRepository) ListEmulsion(ctx context.Context, f LogFilter) ([]models.EmulsionLog, error) {
	return listFacts[models.EmulsionLog](ctx, r.db, f, factColumns{flag: "is_within_spec"}, false)
}

func (r *FactRepository) CreateEmulsion(ctx context.Context, log *models.EmulsionLog) error {
	return create(ctx, r.db, log)
}

// LatestEmulsion returns the newest emulsion log of every machine,
// ordered by machine id.
func (r *FactRepository) LatestEmulsion(ctx context.Context) ([]models.EmulsionLog, error) {
	var rows []models.EmulsionLog
	err := DB(ctx, r.db).
		Order("machine_id ASC").
		Order("timestamp DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	latest := make([]models.EmulsionLog, 0)
	for i, row := range rows {
		if i == 0 || rows[i-1].MachineID != row.MachineID {
			latest = append(latest, row)
		}
	}
	return latest, nil
}
