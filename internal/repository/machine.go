package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

// MachineFilter narrows the machine list.
type MachineFilter struct {
	Area   string
	Status domain.MachineStatus
	Type   domain.MachineType
}

// MachineRepository reads and writes machines.
type MachineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) *MachineRepository {
	return &MachineRepository{db: db}
}

// List returns machines with their operator loaded, ordered by id.
func (r *MachineRepository) List(ctx context.Context, f MachineFilter) ([]models.Machine, error) {
	var rows []models.Machine
	err := DB(ctx, r.db).
		Preload("Operator").
		Scopes(
			Equals("area", f.Area),
			Equals("status", string(f.Status)),
			Equals("type", string(f.Type)),
		).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Get loads one machine with its operator.
func (r *MachineRepository) Get(ctx context.Context, id string) (*models.Machine, error) {
	var m models.Machine
	if err := DB(ctx, r.db).Preload("Operator").First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists reports whether a machine with id exists.
func (r *MachineRepository) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	err := DB(ctx, r.db).Model(&models.Machine{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *MachineRepository) Create(ctx context.Context, m *models.Machine) error {
	return DB(ctx, r.db).Omit(clause.Associations).Create(m).Error
}

// Save writes every column of m. The loaded operator is not upserted.
func (r *MachineRepository) Save(ctx context.Context, m *models.Machine) error {
	return DB(ctx, r.db).Omit(clause.Associations).Save(m).Error
}

// UpdateFields writes only the given columns.
func (r *MachineRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return DB(ctx, r.db).Model(&models.Machine{}).Where("id = ?", id).Updates(fields).Error
}

func (r *MachineRepository) Delete(ctx context.Context, id string) error {
	return DB(ctx, r.db).Delete(&models.Machine{}, "id = ?", id).Error
}

// HasHistory reports whether any work order, task or log references the machine.
func (r *MachineRepository) HasHistory(ctx context.Context, id string) (bool, error) {
	for _, model := range []interface{}{
		&models.WorkOrder{},
		&models.MaintenanceTask{},
		&models.ProductionLog{},
		&models.DowntimeLog{},
		&models.QualityCheck{},
		&models.ScrapEntry{},
		&models.EmulsionLog{},
	} {
		var n int64
		if err := DB(ctx, r.db).Model(model).Where("machine_id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// Readings returns the fleet slice used by status and OEE reductions.
func (r *MachineRepository) Readings(ctx context.Context) ([]domain.MachineReading, error) {
	var rows []models.Machine
	if err := DB(ctx, r.db).Select("id", "name", "area", "status", "oee").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.MachineReading, 0, len(rows))
	for _, m := range rows {
		out = append(out, domain.MachineReading{
			ID:     m.ID,
			Name:   m.Name,
			Area:   m.Area,
			Status: m.Status,
			OEE:    m.OEE,
		})
	}
	return out, nil
}

// Areas returns the distinct machine areas in order.
func (r *MachineRepository) Areas(ctx context.Context) ([]string, error) {
	var areas []string
	err := DB(ctx, r.db).Model(&models.Machine{}).Distinct("area").Order("area ASC").Pluck("area", &areas).Error
	return areas, err
}

// IDsInAreas returns the ids of machines in any of areas.
func (r *MachineRepository) IDsInAreas(ctx context.Context, areas []string) ([]string, error) {
	if len(areas) == 0 {
		return nil, nil
	}
	var ids []string
	err := DB(ctx, r.db).Model(&models.Machine{}).Where("area IN ?", areas).Pluck("id", &ids).Error
	return ids, err
}
