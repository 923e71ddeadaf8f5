package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/pkg/worker"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/testutil"
)

func init() {
	_ = logger.Init("error", "json")
}

var seedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func newTestSeeder(t *testing.T) (*seeder, *gorm.DB, *worker.Pool) {
	t.Helper()
	db := testutil.OpenSQLite(t)
	s := newSeeder(db,
		config.DashboardConfig{
			DailyTargetMT: 60,
			PlantAreas: []config.PlantAreas{
				{Plant: "PCP-1", Areas: []string{"Drawing", "Stranding"}},
				{Plant: "PCP-2", Areas: []string{"Extrusion", "CV Line"}},
			},
		},
		config.PricingConfig{LMECopperUSDPerMT: 9500, USDToSAR: 3.75},
	)
	s.auth.WithHashCost(bcrypt.MinCost)
	s.now = func() time.Time { return seedNow }

	pool, err := worker.NewPool(worker.PoolConfig{Name: "seed-test", Size: 1})
	require.NoError(t, err)
	t.Cleanup(func() { pool.Shutdown(time.Second) })
	return s, db, pool
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeeder_ReferenceDataIsIdempotent(t *testing.T) {
	s, db, pool := newTestSeeder(t)
	ctx := context.Background()
	opts := options{AdminUsername: "admin", AdminEmail: "admin@localhost", AdminPassword: "change-me-now"}

	require.NoError(t, s.Run(ctx, opts, pool))
	require.NoError(t, s.Run(ctx, opts, pool))

	assert.EqualValues(t, len(referencePlants()), count(t, db, &models.Plant{}))
	assert.EqualValues(t, len(referenceEmployees()), count(t, db, &models.Employee{}))
	assert.EqualValues(t, len(referenceMachines()), count(t, db, &models.Machine{}))
	assert.EqualValues(t, 2, count(t, db, &models.WorkforceRecord{}))
	assert.EqualValues(t, 1, count(t, db, &models.User{}))

	admin, err := s.repos.Users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte("change-me-now")))
}

func TestSeeder_SkipsAdminWithoutPassword(t *testing.T) {
	s, db, pool := newTestSeeder(t)

	require.NoError(t, s.Run(context.Background(), options{AdminUsername: "admin"}, pool))
	assert.EqualValues(t, 0, count(t, db, &models.User{}))
	assert.EqualValues(t, len(referenceMachines()), count(t, db, &models.Machine{}))
}

func TestSeeder_ReferenceMachinesMapToPlants(t *testing.T) {
	s, _, _ := newTestSeeder(t)
	for _, m := range referenceMachines() {
		assert.NotEmpty(t, s.plantOf(m.Area), m.ID)
		assert.True(t, m.Type.Valid(), m.ID)
		assert.True(t, m.Status.Valid(), m.ID)
	}
}

func TestSeeder_DemoHistory(t *testing.T) {
	s, db, pool := newTestSeeder(t)
	ctx := context.Background()
	opts := options{AdminUsername: "admin", DemoDays: 2}

	require.NoError(t, s.Run(ctx, opts, pool))

	// Per machine: 9 readings on the full day, 5 on today up to 15:00.
	machines := int64(len(referenceMachines()))
	assert.Equal(t, 14*machines, count(t, db, &models.ProductionLog{}))
	// Both days are past noon, so every machine files one scrap entry a day.
	assert.Equal(t, 2*machines, count(t, db, &models.ScrapEntry{}))
	assert.Positive(t, count(t, db, &models.QualityCheck{}))

	var daily []models.DailyProduction
	require.NoError(t, db.Order("plant_id, date").Find(&daily).Error)
	require.Len(t, daily, 4)
	for _, d := range daily {
		assert.Positive(t, d.ProductionMT, d.PlantID)
		assert.Equal(t, 60.0, d.TargetMT)
	}

	var scrap models.ScrapEntry
	require.NoError(t, db.First(&scrap).Error)
	require.NotNil(t, scrap.FinancialValueUSD)
	require.NotNil(t, scrap.LMEPriceUsed)
	assert.Equal(t, 9500.0, *scrap.LMEPriceUsed)

	// A second run finds the window populated and writes nothing.
	require.NoError(t, s.Run(ctx, opts, pool))
	assert.Equal(t, 14*machines, count(t, db, &models.ProductionLog{}))
	assert.EqualValues(t, 4, count(t, db, &models.DailyProduction{}))
}

func TestSeeder_HistoryIsDeterministic(t *testing.T) {
	a, dbA, poolA := newTestSeeder(t)
	b, dbB, poolB := newTestSeeder(t)
	ctx := context.Background()

	require.NoError(t, a.Run(ctx, options{DemoDays: 1}, poolA))
	require.NoError(t, b.Run(ctx, options{DemoDays: 1}, poolB))

	var sumA, sumB float64
	require.NoError(t, dbA.Model(&models.ProductionLog{}).Select("COALESCE(SUM(output_weight), 0)").Scan(&sumA).Error)
	require.NoError(t, dbB.Model(&models.ProductionLog{}).Select("COALESCE(SUM(output_weight), 0)").Scan(&sumB).Error)
	assert.Positive(t, sumA)
	assert.InDelta(t, sumA, sumB, 1e-6)
}

func TestRootCmd_Flags(t *testing.T) {
	cmd := newRootCmd()

	f := cmd.Flags()
	username, err := f.GetString("admin-username")
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
	days, err := f.GetInt("demo-days")
	require.NoError(t, err)
	assert.Equal(t, 0, days)
}

func TestRootCmd_RejectsNegativeDemoDays(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--demo-days=-1"})

	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo-days")
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.24, round2(1.236))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, 12.5, round2(12.5))
}
