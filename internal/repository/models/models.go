// Package models declares the GORM row types for the plant database.
//
// The JSON tags are the wire names served by the API, so handlers return
// most rows as-is. Columns whose zero value is meaningful (booleans that
// default to true, counters that default to non-zero) carry no GORM
// default: services fill them before insert.
package models

import (
	"time"

	"gorm.io/datatypes"

	"cableops.io/dashboard/internal/domain"
)

// Plant is a production plant with a yearly capacity in metric tons.
type Plant struct {
	ID                string    `gorm:"primaryKey;size:20" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	NameAr            *string   `gorm:"column:name_ar;size:100" json:"name_ar"`
	Description       *string   `gorm:"size:500" json:"description"`
	DesignCapacityMT  float64   `gorm:"column:design_capacity_mt;not null" json:"design_capacity_mt"`
	CurrentCapacityMT float64   `gorm:"column:current_capacity_mt;not null" json:"current_capacity_mt"`
	Location          *string   `gorm:"size:200" json:"location"`
	IsActive          bool      `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Plant) TableName() string { return "plants" }

// Employee is a shop-floor worker. Machines and logs reference operators
// by id; the API resolves them by exact name.
type Employee struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	EmployeeNumber string    `gorm:"size:20;uniqueIndex;not null" json:"employee_number"`
	Name           string    `gorm:"size:100;not null;index" json:"name"`
	NameAr         *string   `gorm:"column:name_ar;size:100" json:"name_ar"`
	Department     *string   `gorm:"size:50" json:"department"`
	Position       *string   `gorm:"size:50" json:"position"`
	Shift          *string   `gorm:"size:20" json:"shift"`
	IsActive       bool      `gorm:"not null" json:"is_active"`
	SkillLevel     int       `gorm:"not null" json:"skill_level"`
	Certifications *string   `json:"certifications"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Employee) TableName() string { return "employees" }

// Machine is the current state of a piece of equipment.
type Machine struct {
	ID          string               `gorm:"primaryKey;size:20" json:"id"`
	Name        string               `gorm:"size:100;not null" json:"name"`
	Area        string               `gorm:"size:50;not null;index" json:"area"`
	Type        domain.MachineType   `gorm:"size:30;not null" json:"type"`
	Status      domain.MachineStatus `gorm:"size:20;not null;index" json:"status"`
	Speed       float64              `gorm:"not null" json:"speed"`
	TargetSpeed float64              `gorm:"not null" json:"target_speed"`
	Temperature float64              `gorm:"not null" json:"temperature"`
	OEE         float64              `gorm:"column:oee;not null" json:"oee"`
	OperatorID  *uint                `json:"-"`
	Operator    *Employee            `gorm:"foreignKey:OperatorID" json:"-"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

func (Machine) TableName() string { return "machines" }

// OperatorName is the assigned operator's name, when loaded.
func (m Machine) OperatorName() *string {
	if m.Operator == nil {
		return nil
	}
	name := m.Operator.Name
	return &name
}

// WorkOrder is a customer order scheduled on a machine.
type WorkOrder struct {
	ID               string                 `gorm:"primaryKey;size:20" json:"id"`
	Customer         string                 `gorm:"size:200;not null" json:"customer"`
	Product          string                 `gorm:"size:200;not null" json:"product"`
	ProductCode      *string                `gorm:"size:50" json:"product_code"`
	MachineID        string                 `gorm:"size:20;not null;index" json:"machine_id"`
	Priority         domain.Priority        `gorm:"size:10;not null" json:"priority"`
	Status           domain.WorkOrderStatus `gorm:"size:20;not null;index" json:"status"`
	Progress         float64                `gorm:"not null" json:"progress"`
	QuantityOrdered  float64                `gorm:"not null" json:"quantity_ordered"`
	QuantityProduced float64                `gorm:"not null" json:"quantity_produced"`
	Color            *string                `gorm:"size:50" json:"color"`
	DueDate          *time.Time             `gorm:"index" json:"due_date"`
	StartDate        *time.Time             `json:"start_date"`
	EndDate          *time.Time             `json:"end_date"`
	Notes            *string                `json:"notes"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}

func (WorkOrder) TableName() string { return "work_orders" }

// ProductionLog is one speed/output reading from a machine.
type ProductionLog struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	MachineID    string       `gorm:"size:20;not null;index" json:"machine_id"`
	OperatorID   *uint        `json:"-"`
	Operator     *Employee    `gorm:"foreignKey:OperatorID" json:"-"`
	Shift        domain.Shift `gorm:"size:10;not null" json:"shift"`
	Timestamp    time.Time    `gorm:"not null;index" json:"timestamp"`
	Speed        float64      `gorm:"not null" json:"speed"`
	TargetSpeed  *float64     `json:"target_speed"`
	Temperature  *float64     `json:"temperature"`
	Pressure     *float64     `json:"pressure"`
	OutputLength *float64     `json:"output_length"`
	OutputWeight *float64     `json:"output_weight"`
	Notes        *string      `json:"notes"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (ProductionLog) TableName() string { return "production_logs" }

// DowntimeLog records a stoppage on a machine.
type DowntimeLog struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	MachineID       string              `gorm:"size:20;not null;index" json:"machine_id"`
	OperatorID      *uint               `json:"-"`
	Operator        *Employee           `gorm:"foreignKey:OperatorID" json:"-"`
	Shift           domain.Shift        `gorm:"size:10;not null" json:"shift"`
	Timestamp       time.Time           `gorm:"not null;index" json:"timestamp"`
	DowntimeType    domain.DowntimeType `gorm:"size:20;not null" json:"downtime_type"`
	DurationMinutes int                 `gorm:"not null" json:"duration_minutes"`
	Reason          string              `gorm:"size:500;not null" json:"reason"`
	Resolution      *string             `gorm:"size:500" json:"resolution"`
	IsPlanned       bool                `gorm:"not null" json:"is_planned"`
	CreatedAt       time.Time           `json:"created_at"`
}

func (DowntimeLog) TableName() string { return "downtime_logs" }

// QualityCheck is an in-line inspection of cable on a machine.
type QualityCheck struct {
	ID                     uint         `gorm:"primaryKey" json:"id"`
	MachineID              string       `gorm:"size:20;not null;index" json:"machine_id"`
	OperatorID             *uint        `json:"-"`
	Operator               *Employee    `gorm:"foreignKey:OperatorID" json:"-"`
	Shift                  domain.Shift `gorm:"size:10;not null" json:"shift"`
	Timestamp              time.Time    `gorm:"not null;index" json:"timestamp"`
	Diameter               *float64     `json:"diameter"`
	DiameterTolerance      *float64     `json:"diameter_tolerance"`
	Thickness              *float64     `json:"thickness"`
	Concentricity          *float64     `json:"concentricity"`
	SparkTestPassed        bool         `gorm:"not null" json:"spark_test_passed"`
	SparkTestVoltage       *float64     `json:"spark_test_voltage"`
	TensileTestPassed      bool         `gorm:"not null" json:"tensile_test_passed"`
	TensileStrength        *float64     `json:"tensile_strength"`
	Elongation             *float64     `json:"elongation"`
	VisualInspectionPassed bool         `gorm:"not null" json:"visual_inspection_passed"`
	DefectType             *string      `gorm:"size:100" json:"defect_type"`
	DefectLocation         *string      `gorm:"size:100" json:"defect_location"`
	Passed                 bool         `gorm:"not null" json:"passed"`
	Notes                  *string      `json:"notes"`
	CreatedAt              time.Time    `json:"created_at"`
}

func (QualityCheck) TableName() string { return "quality_checks" }

// ScrapEntry is a weighed batch of scrap, valued at write time.
type ScrapEntry struct {
	ID                     uint             `gorm:"primaryKey" json:"id"`
	MachineID              string           `gorm:"size:20;not null;index" json:"machine_id"`
	OperatorID             *uint            `json:"-"`
	Operator               *Employee        `gorm:"foreignKey:OperatorID" json:"-"`
	Shift                  domain.Shift     `gorm:"size:10;not null" json:"shift"`
	Timestamp              time.Time        `gorm:"not null;index" json:"timestamp"`
	ScrapType              domain.ScrapType `gorm:"size:30;not null" json:"scrap_type"`
	ScrapCode              *string          `gorm:"size:20" json:"scrap_code"`
	WeightKg               float64          `gorm:"not null" json:"weight_kg"`
	CopperContentPercent   float64          `gorm:"not null" json:"copper_content_percent"`
	AluminumContentPercent float64          `gorm:"not null" json:"aluminum_content_percent"`
	LMEPriceUsed           *float64         `gorm:"column:lme_price_used" json:"lme_price_used"`
	FinancialValueUSD      *float64         `gorm:"column:financial_value_usd" json:"financial_value_usd"`
	FinancialValueSAR      *float64         `gorm:"column:financial_value_sar" json:"financial_value_sar"`
	Reason                 *string          `gorm:"size:500" json:"reason"`
	WorkOrderID            *string          `gorm:"size:20" json:"work_order_id"`
	Notes                  *string          `json:"notes"`
	CreatedAt              time.Time        `json:"created_at"`
}

func (ScrapEntry) TableName() string { return "scrap_entries" }

// MaintenanceTask is a planned or reactive job on a machine.
type MaintenanceTask struct {
	ID                     string                   `gorm:"primaryKey;size:20" json:"id"`
	MachineID              string                   `gorm:"size:20;not null;index" json:"machine_id"`
	Type                   domain.MaintenanceType   `gorm:"size:20;not null" json:"type"`
	Status                 domain.MaintenanceStatus `gorm:"size:20;not null;index" json:"status"`
	Title                  string                   `gorm:"size:200;not null" json:"title"`
	Description            *string                  `json:"description"`
	Priority               int                      `gorm:"not null" json:"priority"`
	Assignee               *string                  `gorm:"size:100" json:"assignee"`
	Team                   *string                  `gorm:"size:100" json:"team"`
	ScheduledStart         *time.Time               `json:"scheduled_start"`
	ScheduledEnd           *time.Time               `json:"scheduled_end"`
	ActualStart            *time.Time               `json:"actual_start"`
	ActualEnd              *time.Time               `json:"actual_end"`
	EstimatedDurationHours *float64                 `json:"estimated_duration_hours"`
	ActualDurationHours    *float64                 `json:"actual_duration_hours"`
	DowntimeMinutes        int                      `gorm:"not null" json:"downtime_minutes"`
	SparePartsUsed         *string                  `json:"spare_parts_used"`
	LaborCost              float64                  `gorm:"not null" json:"labor_cost"`
	PartsCost              float64                  `gorm:"not null" json:"parts_cost"`
	TotalCost              float64                  `gorm:"not null" json:"total_cost"`
	RootCause              *string                  `json:"root_cause"`
	Resolution             *string                  `json:"resolution"`
	Notes                  *string                  `json:"notes"`
	CreatedAt              time.Time                `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

func (MaintenanceTask) TableName() string { return "maintenance_tasks" }

// EmulsionLog is a drawing-lubricant measurement.
type EmulsionLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	MachineID      string    `gorm:"size:20;not null;index" json:"machine_id"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
	PHLevel        float64   `gorm:"column:ph_level;not null" json:"ph_level"`
	Conductivity   *float64  `json:"conductivity"`
	Concentration  *float64  `json:"concentration"`
	Temperature    *float64  `json:"temperature"`
	BacteriaCount  *float64  `json:"bacteria_count"`
	GrotanAdded    float64   `gorm:"not null" json:"grotan_added"`
	IsWithinSpec   bool      `gorm:"not null" json:"is_within_spec"`
	ActionRequired *string   `gorm:"size:500" json:"action_required"`
	Notes          *string   `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
}

func (EmulsionLog) TableName() string { return "emulsion_logs" }

// WorkforceRecord is a staffing snapshot for a plant.
type WorkforceRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlantID         string    `gorm:"size:20;not null;index" json:"plant_id"`
	Date            time.Time `gorm:"not null;index" json:"date"`
	TotalPositions  int       `gorm:"not null" json:"total_positions"`
	FilledPositions int       `gorm:"not null" json:"filled_positions"`
	MorningShift    int       `gorm:"not null" json:"morning_shift"`
	EveningShift    int       `gorm:"not null" json:"evening_shift"`
	NightShift      int       `gorm:"not null" json:"night_shift"`
	Operators       int       `gorm:"not null" json:"operators"`
	Technicians     int       `gorm:"not null" json:"technicians"`
	Supervisors     int       `gorm:"not null" json:"supervisors"`
	Engineers       int       `gorm:"not null" json:"engineers"`
	SupportStaff    int       `gorm:"not null" json:"support_staff"`
	InTraining      int       `gorm:"not null" json:"in_training"`
	CreatedAt       time.Time `json:"created_at"`
}

func (WorkforceRecord) TableName() string { return "workforce_records" }

// Staffing returns the derived-figure view of the record.
func (r WorkforceRecord) Staffing() domain.Staffing {
	return domain.Staffing{
		TotalPositions:  r.TotalPositions,
		FilledPositions: r.FilledPositions,
		InTraining:      r.InTraining,
	}
}

// DailyProduction is a per-plant daily rollup written by the nightly
// batch; this service only reads it.
type DailyProduction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	PlantID               string    `gorm:"size:20;not null;index" json:"plant_id"`
	Date                  time.Time `gorm:"not null;index" json:"date"`
	ProductionMT          float64   `gorm:"column:production_mt;not null" json:"production_mt"`
	TargetMT              float64   `gorm:"column:target_mt;not null" json:"target_mt"`
	ScrapMT               float64   `gorm:"column:scrap_mt;not null" json:"scrap_mt"`
	Availability          *float64  `json:"availability"`
	Performance           *float64  `json:"performance"`
	Quality               *float64  `json:"quality"`
	OEE                   *float64  `gorm:"column:oee" json:"oee"`
	PlannedProductionTime *float64  `json:"planned_production_time"`
	ActualProductionTime  *float64  `json:"actual_production_time"`
	DowntimePlanned       *float64  `json:"downtime_planned"`
	DowntimeUnplanned     *float64  `json:"downtime_unplanned"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (DailyProduction) TableName() string { return "daily_production" }

// User is a dashboard account.
type User struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Email          string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username       string          `gorm:"size:100;uniqueIndex;not null" json:"username"`
	HashedPassword string          `gorm:"size:255;not null" json:"-"`
	FullName       *string         `gorm:"size:200" json:"full_name"`
	Role           domain.UserRole `gorm:"size:20;not null" json:"role"`
	IsActive       bool            `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// AuditLog records one successful write.
type AuditLog struct {
	ID           string            `gorm:"primaryKey;size:64" json:"id"`
	Action       string            `gorm:"size:50;not null;index" json:"action"`
	ResourceType string            `gorm:"size:50;not null" json:"resource_type"`
	ResourceID   string            `gorm:"size:64;not null;index" json:"resource_id"`
	Actor        string            `gorm:"size:100;not null" json:"actor"`
	Details      datatypes.JSONMap `json:"details"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// All lists every model, in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Plant{},
		&Employee{},
		&Machine{},
		&WorkOrder{},
		&ProductionLog{},
		&DowntimeLog{},
		&QualityCheck{},
		&ScrapEntry{},
		&MaintenanceTask{},
		&EmulsionLog{},
		&WorkforceRecord{},
		&DailyProduction{},
		&User{},
		&AuditLog{},
	}
}
