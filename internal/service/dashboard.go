package service

import (
	"context"
	"fmt"
	"time"

	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

const (
	capacityUnit = "MT/year"
	maxAlerts    = 10
)

// trendHours are the buckets of the hourly chart.
var trendHours = []int{6, 8, 10, 12, 14, 16, 18, 20, 22}

func hourLabel(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

type Alert struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	MachineID string    `json:"machine_id"`
	Timestamp time.Time `json:"timestamp"`
}

type KPIs struct {
	OverallOEE          float64 `json:"overall_oee"`
	CapacityUtilization float64 `json:"capacity_utilization"`
	ActiveWorkOrders    int64   `json:"active_work_orders"`
	PendingMaintenance  int64   `json:"pending_maintenance"`
	QualityRate         float64 `json:"quality_rate"`
	ScrapRate           float64 `json:"scrap_rate"`
}

type WorkforceOverview struct {
	TotalOnShift   int     `json:"total_on_shift"`
	TotalVacancies int     `json:"total_vacancies"`
	VacancyRate    float64 `json:"vacancy_rate"`
}

type ScrapToday struct {
	WeightKg float64 `json:"weight_kg"`
	ValueUSD float64 `json:"value_usd"`
	ValueSAR float64 `json:"value_sar"`
}

// Overview is the dashboard home page payload.
type Overview struct {
	Timestamp  time.Time           `json:"timestamp"`
	Machines   domain.StatusCounts `json:"machines"`
	KPIs       KPIs                `json:"kpis"`
	Workforce  WorkforceOverview   `json:"workforce"`
	ScrapToday ScrapToday          `json:"scrap_today"`
	Alerts     []Alert             `json:"alerts"`
}

// PlantView is a plant with its capacity utilization.
type PlantView struct {
	models.Plant
	UtilizationPercent float64 `json:"utilization_percent"`
}

type PlantCapacityView struct {
	PlantID            string  `json:"plant_id"`
	PlantName          string  `json:"plant_name"`
	DesignCapacity     float64 `json:"design_capacity"`
	ActualProduction   float64 `json:"actual_production"`
	UtilizationPercent float64 `json:"utilization_percent"`
	Unit               string  `json:"unit"`
}

// CreatePlantInput is the body of POST /dashboard/capacity/plants.
type CreatePlantInput struct {
	ID                string   `json:"id" binding:"required,min=1,max=20"`
	Name              string   `json:"name" binding:"required,min=1,max=100"`
	NameAr            *string  `json:"name_ar" binding:"omitempty,max=100"`
	Description       *string  `json:"description" binding:"omitempty,max=500"`
	DesignCapacityMT  float64  `json:"design_capacity_mt" binding:"required,gt=0"`
	CurrentCapacityMT *float64 `json:"current_capacity_mt" binding:"omitempty,gte=0"`
	Location          *string  `json:"location" binding:"omitempty,max=200"`
}

// UpdatePlantInput is the body of PUT /dashboard/capacity/plants/{id}.
type UpdatePlantInput struct {
	Name              *string  `json:"name" binding:"omitempty,min=1,max=100"`
	NameAr            *string  `json:"name_ar" binding:"omitempty,max=100"`
	Description       *string  `json:"description" binding:"omitempty,max=500"`
	DesignCapacityMT  *float64 `json:"design_capacity_mt" binding:"omitempty,gt=0"`
	CurrentCapacityMT *float64 `json:"current_capacity_mt" binding:"omitempty,gte=0"`
	Location          *string  `json:"location" binding:"omitempty,max=200"`
	IsActive          *bool    `json:"is_active"`
}

type WorkforceSummary struct {
	PlantID     string  `json:"plant_id"`
	Total       int     `json:"total"`
	OnShift     int     `json:"on_shift"`
	Vacancies   int     `json:"vacancies"`
	VacancyRate float64 `json:"vacancy_rate"`
}

// CreateWorkforceInput is the body of POST /dashboard/workforce.
type CreateWorkforceInput struct {
	PlantID         string `json:"plant_id" binding:"required,min=1,max=20"`
	TotalPositions  int    `json:"total_positions" binding:"gte=0"`
	FilledPositions int    `json:"filled_positions" binding:"gte=0"`
	MorningShift    int    `json:"morning_shift" binding:"gte=0"`
	EveningShift    int    `json:"evening_shift" binding:"gte=0"`
	NightShift      int    `json:"night_shift" binding:"gte=0"`
	Operators       int    `json:"operators" binding:"gte=0"`
	Technicians     int    `json:"technicians" binding:"gte=0"`
	Supervisors     int    `json:"supervisors" binding:"gte=0"`
	Engineers       int    `json:"engineers" binding:"gte=0"`
	SupportStaff    int    `json:"support_staff" binding:"gte=0"`
	InTraining      int    `json:"in_training" binding:"gte=0"`
}

// WorkforceRecordView is a stored record with its derived headcounts.
type WorkforceRecordView struct {
	models.WorkforceRecord
	Vacancies int `json:"vacancies"`
	Certified int `json:"certified"`
}

type HourlyPoint struct {
	Hour   string  `json:"hour"`
	PCP1   float64 `json:"pcp1"`
	PCP2   float64 `json:"pcp2"`
	Target float64 `json:"target"`
}

type WeeklyPoint struct {
	Day        string  `json:"day"`
	Production float64 `json:"production"`
	Target     float64 `json:"target"`
	Scrap      float64 `json:"scrap"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// DashboardService computes the plant-wide views of the home page.
type DashboardService struct {
	auditor
	repos   *repository.Repositories
	cfg     config.DashboardConfig
	demo    bool
	version string
	clock   Clock
}

func NewDashboardService(repos *repository.Repositories, cfg config.DashboardConfig, demo config.DemoConfig, version string, clock Clock) *DashboardService {
	return &DashboardService{
		repos:   repos,
		cfg:     cfg,
		demo:    demo.Enabled,
		version: version,
		clock:   clock,
	}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *DashboardService) WithAuditLogger(al *audit.Logger) *DashboardService {
	s.log = al
	return s
}

func (s *DashboardService) Overview(ctx context.Context) (*Overview, error) {
	now := s.clock.now()

	readings, err := s.repos.Machines.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read machines: %w", err)
	}
	scrap, err := s.repos.Facts.ScrapIn(ctx, domain.DayWindow(now), "")
	if err != nil {
		return nil, fmt.Errorf("read scrap entries: %w", err)
	}
	kpis, err := s.kpis(ctx, now, readings, scrap)
	if err != nil {
		return nil, err
	}
	workforce, err := s.workforceOverview(ctx)
	if err != nil {
		return nil, err
	}

	var today ScrapToday
	for _, e := range scrap {
		today.WeightKg += e.WeightKg
		today.ValueUSD += floatOr(e.FinancialValueUSD, 0)
		today.ValueSAR += floatOr(e.FinancialValueSAR, 0)
	}
	today.WeightKg = domain.Round2(today.WeightKg)
	today.ValueUSD = domain.Round2(today.ValueUSD)
	today.ValueSAR = domain.Round2(today.ValueSAR)

	return &Overview{
		Timestamp:  now,
		Machines:   domain.CountStatuses(readings),
		KPIs:       kpis,
		Workforce:  workforce,
		ScrapToday: today,
		Alerts:     machineAlerts(readings, now),
	}, nil
}

// KPIs returns the key figures of the overview on their own.
func (s *DashboardService) KPIs(ctx context.Context) (*KPIs, error) {
	now := s.clock.now()
	readings, err := s.repos.Machines.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read machines: %w", err)
	}
	scrap, err := s.repos.Facts.ScrapIn(ctx, domain.DayWindow(now), "")
	if err != nil {
		return nil, fmt.Errorf("read scrap entries: %w", err)
	}
	kpis, err := s.kpis(ctx, now, readings, scrap)
	if err != nil {
		return nil, err
	}
	return &kpis, nil
}

func (s *DashboardService) kpis(ctx context.Context, now time.Time, readings []domain.MachineReading, scrapToday []models.ScrapEntry) (KPIs, error) {
	var k KPIs
	oee, _ := domain.RunningOEE(readings)
	k.OverallOEE = domain.Round2(oee)

	plants, err := s.repos.Plants.List(ctx)
	if err != nil {
		return k, fmt.Errorf("list plants: %w", err)
	}
	switch {
	case len(plants) > 0:
		k.CapacityUtilization = domain.Round2(domain.CapacityUtilization(plantCapacities(plants)))
	case s.demo:
		k.CapacityUtilization = demoCapacityUtilization
	}

	if k.ActiveWorkOrders, err = s.repos.WorkOrders.CountByStatus(ctx, domain.WorkOrderInProgress); err != nil {
		return k, fmt.Errorf("count active work orders: %w", err)
	}
	if k.PendingMaintenance, err = s.repos.Maintenance.CountOpen(ctx); err != nil {
		return k, fmt.Errorf("count open maintenance: %w", err)
	}

	checks, err := s.repos.Facts.QualityIn(ctx, domain.Window{Start: now.Add(-24 * time.Hour)}, "")
	if err != nil {
		return k, fmt.Errorf("read quality checks: %w", err)
	}
	switch {
	case len(checks) > 0:
		k.QualityRate = domain.SummarizeQuality(qualityFacts(checks)).PassRate
	case s.demo:
		k.QualityRate = demoQualityRate
	}

	production, err := s.repos.Facts.ProductionIn(ctx, domain.DayWindow(now), "")
	if err != nil {
		return k, fmt.Errorf("read production logs: %w", err)
	}
	var scrapKg float64
	for _, e := range scrapToday {
		scrapKg += e.WeightKg
	}
	outputKg := domain.SummarizeProduction(productionFacts(production)).TotalOutputWeight
	switch {
	case outputKg+scrapKg > 0:
		k.ScrapRate = domain.Round2(domain.Percent(scrapKg, outputKg+scrapKg))
	case s.demo:
		k.ScrapRate = demoScrapRate
	}
	return k, nil
}

// machineAlerts raises one alert per stopped machine, then one per machine
// under maintenance.
func machineAlerts(readings []domain.MachineReading, now time.Time) []Alert {
	alerts := make([]Alert, 0)
	for _, m := range readings {
		if m.Status == domain.MachineStopped {
			alerts = append(alerts, Alert{
				Type:      "error",
				Title:     "Machine Down",
				Message:   fmt.Sprintf("%s (%s) is stopped", m.ID, m.Name),
				MachineID: m.ID,
				Timestamp: now,
			})
		}
	}
	for _, m := range readings {
		if m.Status == domain.MachineMaintenance {
			alerts = append(alerts, Alert{
				Type:      "warning",
				Title:     "Under Maintenance",
				Message:   fmt.Sprintf("%s (%s) is under maintenance", m.ID, m.Name),
				MachineID: m.ID,
				Timestamp: now,
			})
		}
	}
	if len(alerts) > maxAlerts {
		alerts = alerts[:maxAlerts]
	}
	return alerts
}

func (s *DashboardService) workforceOverview(ctx context.Context) (WorkforceOverview, error) {
	records, err := s.repos.Plants.LatestWorkforce(ctx)
	if err != nil {
		return WorkforceOverview{}, fmt.Errorf("read workforce records: %w", err)
	}
	if len(records) == 0 {
		if s.demo {
			return demoWorkforceOverview, nil
		}
		return WorkforceOverview{}, nil
	}
	var total domain.Staffing
	for _, r := range records {
		total.TotalPositions += r.TotalPositions
		total.FilledPositions += r.FilledPositions
		total.InTraining += r.InTraining
	}
	return WorkforceOverview{
		TotalOnShift:   total.FilledPositions,
		TotalVacancies: total.Vacancies(),
		VacancyRate:    total.VacancyRate(),
	}, nil
}

func (s *DashboardService) Capacity(ctx context.Context) ([]PlantCapacityView, error) {
	plants, err := s.repos.Plants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	if len(plants) == 0 && s.demo {
		return demoCapacity(), nil
	}
	out := make([]PlantCapacityView, 0, len(plants))
	for _, p := range plants {
		out = append(out, PlantCapacityView{
			PlantID:            p.ID,
			PlantName:          p.Name,
			DesignCapacity:     p.DesignCapacityMT,
			ActualProduction:   p.CurrentCapacityMT,
			UtilizationPercent: utilization(p),
			Unit:               capacityUnit,
		})
	}
	return out, nil
}

func (s *DashboardService) ListPlants(ctx context.Context) ([]*PlantView, error) {
	plants, err := s.repos.Plants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	out := make([]*PlantView, 0, len(plants))
	for _, p := range plants {
		out = append(out, &PlantView{Plant: p, UtilizationPercent: utilization(p)})
	}
	return out, nil
}

func (s *DashboardService) CreatePlant(ctx context.Context, in CreatePlantInput) (*PlantView, error) {
	p := &models.Plant{
		ID:                in.ID,
		Name:              in.Name,
		NameAr:            in.NameAr,
		Description:       in.Description,
		DesignCapacityMT:  in.DesignCapacityMT,
		CurrentCapacityMT: floatOr(in.CurrentCapacityMT, 0),
		Location:          in.Location,
		IsActive:          true,
	}
	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		exists, err := s.repos.Plants.Exists(ctx, in.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Conflict(apperrors.CodePlantExists, "Plant ID already exists")
		}
		if err := s.repos.Plants.Create(ctx, p); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodePlantExists, "Plant ID already exists")
			}
			return fmt.Errorf("create plant: %w", err)
		}
		return s.record(ctx, "plant.created", "plant", p.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	return &PlantView{Plant: *p, UtilizationPercent: utilization(*p)}, nil
}

func (s *DashboardService) UpdatePlant(ctx context.Context, id string, in UpdatePlantInput) (*PlantView, error) {
	var out *PlantView
	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		p, err := s.repos.Plants.Get(ctx, id)
		if err != nil {
			return orNotFound(err, apperrors.ErrPlantNotFound(id))
		}
		if in.Name != nil {
			p.Name = *in.Name
		}
		if in.NameAr != nil {
			p.NameAr = in.NameAr
		}
		if in.Description != nil {
			p.Description = in.Description
		}
		if in.DesignCapacityMT != nil {
			p.DesignCapacityMT = *in.DesignCapacityMT
		}
		if in.CurrentCapacityMT != nil {
			p.CurrentCapacityMT = *in.CurrentCapacityMT
		}
		if in.Location != nil {
			p.Location = in.Location
		}
		if in.IsActive != nil {
			p.IsActive = *in.IsActive
		}
		if err := s.repos.Plants.Save(ctx, p); err != nil {
			return fmt.Errorf("update plant %s: %w", id, err)
		}
		out = &PlantView{Plant: *p, UtilizationPercent: utilization(*p)}
		return s.record(ctx, "plant.updated", "plant", id, nil)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Workforce returns the latest staffing record of every plant.
func (s *DashboardService) Workforce(ctx context.Context) ([]WorkforceSummary, error) {
	records, err := s.repos.Plants.LatestWorkforce(ctx)
	if err != nil {
		return nil, fmt.Errorf("read workforce records: %w", err)
	}
	if len(records) == 0 && s.demo {
		return demoWorkforce(), nil
	}
	out := make([]WorkforceSummary, 0, len(records))
	for _, r := range records {
		st := r.Staffing()
		out = append(out, WorkforceSummary{
			PlantID:     r.PlantID,
			Total:       r.TotalPositions,
			OnShift:     r.FilledPositions,
			Vacancies:   st.Vacancies(),
			VacancyRate: st.VacancyRate(),
		})
	}
	return out, nil
}

func (s *DashboardService) CreateWorkforce(ctx context.Context, in CreateWorkforceInput) (*WorkforceRecordView, error) {
	if in.FilledPositions > in.TotalPositions {
		return nil, apperrors.Validation(apperrors.CodeValidationFailed, "filled_positions cannot exceed total_positions")
	}
	rec := &models.WorkforceRecord{
		PlantID:         in.PlantID,
		Date:            s.clock.now(),
		TotalPositions:  in.TotalPositions,
		FilledPositions: in.FilledPositions,
		MorningShift:    in.MorningShift,
		EveningShift:    in.EveningShift,
		NightShift:      in.NightShift,
		Operators:       in.Operators,
		Technicians:     in.Technicians,
		Supervisors:     in.Supervisors,
		Engineers:       in.Engineers,
		SupportStaff:    in.SupportStaff,
		InTraining:      in.InTraining,
	}
	err := repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		exists, err := s.repos.Plants.Exists(ctx, in.PlantID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrPlantNotFound(in.PlantID)
		}
		if err := s.repos.Plants.CreateWorkforce(ctx, rec); err != nil {
			return fmt.Errorf("create workforce record: %w", err)
		}
		return s.record(ctx, "workforce.recorded", "workforce_record", fmt.Sprint(rec.ID), map[string]interface{}{
			"plant_id": rec.PlantID,
		})
	})
	if err != nil {
		return nil, err
	}
	st := rec.Staffing()
	return &WorkforceRecordView{WorkforceRecord: *rec, Vacancies: st.Vacancies(), Certified: st.Certified()}, nil
}

// HourlyTrend accumulates the day's output weight per plant at every
// chart bucket. Plants own machines through dashboard.plant_areas.
func (s *DashboardService) HourlyTrend(ctx context.Context, date *time.Time) ([]HourlyPoint, error) {
	day := domain.DayWindow(timestampOr(date, s.clock.now()))

	pcp1, err := s.plantOutput(ctx, "PCP-1", day)
	if err != nil {
		return nil, err
	}
	pcp2, err := s.plantOutput(ctx, "PCP-2", day)
	if err != nil {
		return nil, err
	}
	if len(pcp1) == 0 && len(pcp2) == 0 && s.demo {
		return demoHourly(), nil
	}

	out := make([]HourlyPoint, 0, len(trendHours))
	for _, h := range trendHours {
		cutoff := day.Start.Add(time.Duration(h) * time.Hour)
		out = append(out, HourlyPoint{
			Hour:   hourLabel(h),
			PCP1:   cumulativeMT(pcp1, cutoff),
			PCP2:   cumulativeMT(pcp2, cutoff),
			Target: domain.Round2(s.cfg.DailyTargetMT * float64(h) / 24),
		})
	}
	return out, nil
}

func (s *DashboardService) plantOutput(ctx context.Context, plant string, day domain.Window) ([]models.ProductionLog, error) {
	ids, err := s.repos.Machines.IDsInAreas(ctx, s.cfg.AreasOf(plant))
	if err != nil {
		return nil, fmt.Errorf("resolve %s machines: %w", plant, err)
	}
	logs, err := s.repos.Facts.ProductionForMachinesIn(ctx, day, ids)
	if err != nil {
		return nil, fmt.Errorf("read %s production: %w", plant, err)
	}
	return logs, nil
}

func cumulativeMT(logs []models.ProductionLog, cutoff time.Time) float64 {
	var kg float64
	for _, l := range logs {
		if l.Timestamp.Before(cutoff) && l.OutputWeight != nil {
			kg += *l.OutputWeight
		}
	}
	return domain.Round2(kg / 1000)
}

// WeeklyTrend sums daily production for the seven UTC days ending today.
func (s *DashboardService) WeeklyTrend(ctx context.Context) ([]WeeklyPoint, error) {
	today := domain.DayWindow(s.clock.now())
	week := domain.Window{Start: today.Start.AddDate(0, 0, -6), End: today.End}

	rows, err := s.repos.Plants.DailyIn(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("read daily production: %w", err)
	}
	if len(rows) == 0 && s.demo {
		return demoWeek(), nil
	}

	out := make([]WeeklyPoint, 7)
	for i := range out {
		day := week.Start.AddDate(0, 0, i)
		out[i].Day = day.Weekday().String()[:3]
	}
	for _, r := range rows {
		i := int(domain.DayWindow(r.Date).Start.Sub(week.Start).Hours() / 24)
		if i < 0 || i >= len(out) {
			continue
		}
		out[i].Production += r.ProductionMT
		out[i].Target += r.TargetMT
		out[i].Scrap += r.ScrapMT
	}
	for i := range out {
		out[i].Production = domain.Round2(out[i].Production)
		out[i].Target = domain.Round2(out[i].Target)
		out[i].Scrap = domain.Round2(out[i].Scrap)
	}
	return out, nil
}

func (s *DashboardService) Health() Health {
	return Health{Status: "healthy", Timestamp: s.clock.now(), Version: s.version}
}

func utilization(p models.Plant) float64 {
	return domain.Round2(domain.Percent(p.CurrentCapacityMT, p.DesignCapacityMT))
}

func plantCapacities(plants []models.Plant) []domain.PlantCapacity {
	out := make([]domain.PlantCapacity, 0, len(plants))
	for _, p := range plants {
		out = append(out, domain.PlantCapacity{DesignMT: p.DesignCapacityMT, CurrentMT: p.CurrentCapacityMT})
	}
	return out
}
