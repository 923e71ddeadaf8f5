package main

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/pkg/worker"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/service"
)

type options struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	DemoDays      int
	Workers       int
}

// shiftStarts maps each shift to its starting hour (UTC).
var shiftStarts = []struct {
	shift domain.Shift
	hour  int
}{
	{domain.ShiftMorning, 6},
	{domain.ShiftEvening, 14},
	{domain.ShiftNight, 22},
}

type seeder struct {
	repos   *repository.Repositories
	auth    *service.AuthService
	dash    config.DashboardConfig
	pricing config.PricingConfig
	now     func() time.Time
}

func newSeeder(db *gorm.DB, dash config.DashboardConfig, pricing config.PricingConfig) *seeder {
	repos := repository.New(db)
	return &seeder{
		repos:   repos,
		auth:    service.NewAuthService(repos),
		dash:    dash,
		pricing: pricing,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds reference data, then demo history when opts.DemoDays > 0.
func (s *seeder) Run(ctx context.Context, opts options, pool *worker.Pool) error {
	if err := s.ensureAdmin(ctx, opts); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := s.ensurePlants(ctx); err != nil {
		return fmt.Errorf("seed plants: %w", err)
	}
	if err := s.ensureEmployees(ctx); err != nil {
		return fmt.Errorf("seed employees: %w", err)
	}
	if err := s.ensureMachines(ctx); err != nil {
		return fmt.Errorf("seed machines: %w", err)
	}
	if err := s.ensureWorkforce(ctx); err != nil {
		return fmt.Errorf("seed workforce: %w", err)
	}
	if opts.DemoDays > 0 {
		if err := s.generateHistory(ctx, pool, opts.DemoDays); err != nil {
			return fmt.Errorf("seed demo history: %w", err)
		}
	}
	return nil
}

func (s *seeder) ensureAdmin(ctx context.Context, opts options) error {
	existing, err := s.repos.Users.FindByUsername(ctx, opts.AdminUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Info("Admin user already exists, skipping", zap.String("username", opts.AdminUsername))
		return nil
	}
	if opts.AdminPassword == "" {
		logger.Warn("No admin password given, skipping admin user",
			zap.String("hint", "pass --admin-password or set "+adminPasswordEnv),
		)
		return nil
	}

	hash, err := s.auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return err
	}
	fullName := "Plant Administrator"
	err = s.repos.Users.Create(ctx, &models.User{
		Email:          opts.AdminEmail,
		Username:       opts.AdminUsername,
		HashedPassword: hash,
		FullName:       &fullName,
		Role:           domain.RoleAdmin,
		IsActive:       true,
	})
	if err != nil {
		return fmt.Errorf("create admin %s: %w", opts.AdminUsername, err)
	}
	logger.Info("Seeded admin user", zap.String("username", opts.AdminUsername))
	return nil
}

func (s *seeder) ensurePlants(ctx context.Context) error {
	for _, p := range referencePlants() {
		ok, err := s.repos.Plants.Exists(ctx, p.ID)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.repos.Plants.Create(ctx, &p); err != nil {
			return fmt.Errorf("create plant %s: %w", p.ID, err)
		}
		logger.Info("Seeded plant", zap.String("plant_id", p.ID))
	}
	return nil
}

func (s *seeder) ensureEmployees(ctx context.Context) error {
	for _, e := range referenceEmployees() {
		ok, err := s.repos.Employees.NumberExists(ctx, e.EmployeeNumber)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.repos.Employees.Create(ctx, &e); err != nil {
			return fmt.Errorf("create employee %s: %w", e.EmployeeNumber, err)
		}
	}
	return nil
}

func (s *seeder) ensureMachines(ctx context.Context) error {
	for _, m := range referenceMachines() {
		ok, err := s.repos.Machines.Exists(ctx, m.ID)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.repos.Machines.Create(ctx, &m); err != nil {
			return fmt.Errorf("create machine %s: %w", m.ID, err)
		}
		logger.Info("Seeded machine", zap.String("machine_id", m.ID))
	}
	return nil
}

// ensureWorkforce files today's staffing snapshot for plants that have none.
func (s *seeder) ensureWorkforce(ctx context.Context) error {
	latest, err := s.repos.Plants.LatestWorkforce(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(latest))
	for _, rec := range latest {
		have[rec.PlantID] = true
	}

	today := startOfDay(s.now())
	for _, rec := range referenceWorkforce(today) {
		if have[rec.PlantID] {
			continue
		}
		if err := s.repos.Plants.CreateWorkforce(ctx, &rec); err != nil {
			return fmt.Errorf("create workforce record for %s: %w", rec.PlantID, err)
		}
	}
	return nil
}

// dayTotals accumulates one plant's output and scrap for one day, in kg.
type dayTotals struct {
	outputKg float64
	scrapKg  float64
}

// generateHistory writes days of production, downtime, quality and scrap
// history for every machine, one pool job per machine, then rolls the
// output up into daily production rows per plant. A window that already
// holds production logs is left alone.
func (s *seeder) generateHistory(ctx context.Context, pool *worker.Pool, days int) error {
	today := startOfDay(s.now())
	window := domain.Window{Start: today.AddDate(0, 0, -(days - 1)), End: today.AddDate(0, 0, 1)}

	n, err := s.repos.Facts.CountProductionIn(ctx, window)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("Demo history already present, skipping", zap.Int64("production_logs", n))
		return nil
	}

	machines, err := s.repos.Machines.List(ctx, repository.MachineFilter{})
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		totals = make(map[string]map[time.Time]*dayTotals)
	)
	add := func(plant string, day time.Time, t dayTotals) {
		mu.Lock()
		defer mu.Unlock()
		byDay, ok := totals[plant]
		if !ok {
			byDay = make(map[time.Time]*dayTotals)
			totals[plant] = byDay
		}
		acc, ok := byDay[day]
		if !ok {
			acc = &dayTotals{}
			byDay[day] = acc
		}
		acc.outputKg += t.outputKg
		acc.scrapKg += t.scrapKg
	}

	jobs := make([]worker.Job, 0, len(machines))
	for _, m := range machines {
		plant := s.plantOf(m.Area)
		jobs = append(jobs, func(ctx context.Context) error {
			return repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
				return s.machineHistory(ctx, m, window.Start, days, func(day time.Time, t dayTotals) {
					if plant != "" {
						add(plant, day, t)
					}
				})
			})
		})
	}
	if err := pool.RunAll(ctx, jobs...); err != nil {
		return err
	}

	for plant, byDay := range totals {
		for day, t := range byDay {
			err := s.repos.Plants.CreateDaily(ctx, &models.DailyProduction{
				PlantID:      plant,
				Date:         day,
				ProductionMT: round2(t.outputKg / 1000),
				TargetMT:     s.dash.DailyTargetMT,
				ScrapMT:      round2(t.scrapKg / 1000),
			})
			if err != nil {
				return fmt.Errorf("create daily production for %s: %w", plant, err)
			}
		}
	}

	logger.Info("Seeded demo history",
		zap.Int("machines", len(machines)),
		zap.Int("days", days),
		zap.Any("pool", pool.Metrics()),
	)
	return nil
}

// machineHistory writes every fact row of one machine. Readings later
// than the clock are not written.
func (s *seeder) machineHistory(ctx context.Context, m models.Machine, first time.Time, days int, report func(time.Time, dayTotals)) error {
	rng := rand.New(rand.NewPCG(uint64(days), machineSeed(m.ID)))
	now := s.now()

	for d := 0; d < days; d++ {
		day := first.AddDate(0, 0, d)
		var t dayTotals

		for _, sh := range shiftStarts {
			start := day.Add(time.Duration(sh.hour) * time.Hour)
			if start.After(now) {
				continue
			}
			for h := 0; h < 8; h += 2 {
				ts := start.Add(time.Duration(h) * time.Hour)
				if ts.After(now) || ts.Day() != day.Day() {
					break
				}
				log := productionReading(rng, m, sh.shift, ts)
				if err := s.repos.Facts.CreateProduction(ctx, log); err != nil {
					return fmt.Errorf("create production log: %w", err)
				}
				t.outputKg += *log.OutputWeight
			}

			qc := qualityCheck(rng, m, sh.shift, start.Add(3*time.Hour))
			if !qc.Timestamp.After(now) {
				if err := s.repos.Facts.CreateQuality(ctx, qc); err != nil {
					return fmt.Errorf("create quality check: %w", err)
				}
			}
		}

		noon := day.Add(12 * time.Hour)
		if noon.After(now) {
			report(day, t)
			continue
		}

		if rng.Float64() < 0.4 {
			if err := s.repos.Facts.CreateDowntime(ctx, downtimeEntry(rng, m, noon)); err != nil {
				return fmt.Errorf("create downtime log: %w", err)
			}
		}

		scrap := s.scrapEntry(rng, m, noon)
		if err := s.repos.Facts.CreateScrap(ctx, scrap); err != nil {
			return fmt.Errorf("create scrap entry: %w", err)
		}
		t.scrapKg += scrap.WeightKg

		report(day, t)
	}
	return nil
}

func productionReading(rng *rand.Rand, m models.Machine, shift domain.Shift, ts time.Time) *models.ProductionLog {
	speed := round2(m.TargetSpeed * (0.75 + 0.2*rng.Float64()))
	target := m.TargetSpeed
	temp := round2(60 + 30*rng.Float64())
	length := round2(speed * 120)
	weight := round2(150 + 250*rng.Float64())
	return &models.ProductionLog{
		MachineID:    m.ID,
		Shift:        shift,
		Timestamp:    ts,
		Speed:        speed,
		TargetSpeed:  &target,
		Temperature:  &temp,
		OutputLength: &length,
		OutputWeight: &weight,
	}
}

func qualityCheck(rng *rand.Rand, m models.Machine, shift domain.Shift, ts time.Time) *models.QualityCheck {
	spark := rng.Float64() >= 0.03
	tensile := rng.Float64() >= 0.02
	visual := rng.Float64() >= 0.03
	diameter := round2(10 + rng.Float64())
	qc := &models.QualityCheck{
		MachineID:              m.ID,
		Shift:                  shift,
		Timestamp:              ts,
		Diameter:               &diameter,
		SparkTestPassed:        spark,
		TensileTestPassed:      tensile,
		VisualInspectionPassed: visual,
		Passed:                 spark && tensile && visual,
	}
	if !qc.Passed {
		defect := "surface"
		qc.DefectType = &defect
	}
	return qc
}

var downtimeTypes = []domain.DowntimeType{
	domain.DowntimeMechanical, domain.DowntimeElectrical, domain.DowntimeMaterial,
	domain.DowntimeSetup, domain.DowntimeQuality, domain.DowntimeBreak,
}

func downtimeEntry(rng *rand.Rand, m models.Machine, ts time.Time) *models.DowntimeLog {
	dt := downtimeTypes[rng.IntN(len(downtimeTypes))]
	return &models.DowntimeLog{
		MachineID:       m.ID,
		Shift:           domain.ShiftMorning,
		Timestamp:       ts,
		DowntimeType:    dt,
		DurationMinutes: 10 + rng.IntN(80),
		Reason:          "Demo " + string(dt) + " stop",
		IsPlanned:       dt == domain.DowntimeSetup || dt == domain.DowntimeBreak,
	}
}

// scrapEntry picks a catalog code and values the batch at the configured price.
func (s *seeder) scrapEntry(rng *rand.Rand, m models.Machine, ts time.Time) *models.ScrapEntry {
	codes, err := domain.ScrapCodes()
	e := &models.ScrapEntry{
		MachineID: m.ID,
		Shift:     domain.ShiftMorning,
		Timestamp: ts,
		ScrapType: domain.ScrapOther,
		WeightKg:  round2(5 + 35*rng.Float64()),
	}
	if err == nil && len(codes) > 0 {
		c := codes[rng.IntN(len(codes))]
		code := c.Code
		e.ScrapCode = &code
		e.ScrapType = c.Type
		e.CopperContentPercent = c.CopperPercent
	}

	v := domain.ValueScrap(e.WeightKg, e.CopperContentPercent, s.pricing.LMECopperUSDPerMT, s.pricing.USDToSAR)
	e.LMEPriceUsed = &v.LMEPriceUsed
	e.FinancialValueUSD = &v.ValueUSD
	e.FinancialValueSAR = &v.ValueSAR
	return e
}

func (s *seeder) plantOf(area string) string {
	for _, pa := range s.dash.PlantAreas {
		for _, a := range pa.Areas {
			if a == area {
				return pa.Plant
			}
		}
	}
	return ""
}

func machineSeed(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
