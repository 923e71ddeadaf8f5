package repository

import (
	"context"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

// PlantRepository covers plants and the per-plant rollups: workforce
// records and daily production.
type PlantRepository struct {
	db *gorm.DB
}

func NewPlantRepository(db *gorm.DB) *PlantRepository {
	return &PlantRepository{db: db}
}

func (r *PlantRepository) List(ctx context.Context) ([]models.Plant, error) {
	var rows []models.Plant
	err := DB(ctx, r.db).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *PlantRepository) Get(ctx context.Context, id string) (*models.Plant, error) {
	var p models.Plant
	if err := DB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlantRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.Plant{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *PlantRepository) Create(ctx context.Context, p *models.Plant) error {
	return DB(ctx, r.db).Create(p).Error
}

func (r *PlantRepository) Save(ctx context.Context, p *models.Plant) error {
	return DB(ctx, r.db).Save(p).Error
}

func (r *PlantRepository) CreateWorkforce(ctx context.Context, rec *models.WorkforceRecord) error {
	return DB(ctx, r.db).Create(rec).Error
}

// LatestWorkforce returns the newest workforce record of every plant,
// ordered by plant id.
func (r *PlantRepository) LatestWorkforce(ctx context.Context) ([]models.WorkforceRecord, error) {
	var rows []models.WorkforceRecord
	err := DB(ctx, r.db).
		Order("plant_id ASC").
		Order("date DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	latest := make([]models.WorkforceRecord, 0)
	for i, row := range rows {
		if i == 0 || rows[i-1].PlantID != row.PlantID {
			latest = append(latest, row)
		}
	}
	return latest, nil
}

// CreateDaily stores a daily production rollup.
func (r *PlantRepository) CreateDaily(ctx context.Context, d *models.DailyProduction) error {
	return DB(ctx, r.db).Create(d).Error
}

// DailyIn returns the daily production rows dated inside w.
func (r *PlantRepository) DailyIn(ctx context.Context, w domain.Window) ([]models.DailyProduction, error) {
	var rows []models.DailyProduction
	err := DB(ctx, r.db).Scopes(InWindow("date", &w)).Order("date ASC").Find(&rows).Error
	return rows, err
}
