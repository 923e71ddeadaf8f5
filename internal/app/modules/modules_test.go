package modules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/testutil"
)

func testInfra(t *testing.T) *Infrastructure {
	t.Helper()
	cfg := &config.Config{
		Security: config.SecurityConfig{
			SessionSecret: "modules-test-secret-0123456789abcdef",
			TokenLifetime: 2 * time.Hour,
		},
		Pricing: config.PricingConfig{LMECopperUSDPerMT: 9500, USDToSAR: 3.75},
	}
	return NewInfrastructureFromGorm(cfg, testutil.OpenSQLite(t), nil)
}

func TestNewServerDeps_EveryModuleContributes(t *testing.T) {
	infra := testInfra(t)
	deps := NewServerDeps(infra, All(infra))

	assert.NotNil(t, deps.Machines)
	assert.NotNil(t, deps.DeleteMachine)
	assert.NotNil(t, deps.Production)
	assert.NotNil(t, deps.UpdateWorkOrder)
	assert.NotNil(t, deps.LogProduction)
	assert.NotNil(t, deps.Quality)
	assert.NotNil(t, deps.Maintenance)
	assert.NotNil(t, deps.UpdateTask)
	assert.NotNil(t, deps.Dashboard)
	assert.NotNil(t, deps.Auth)
	assert.NotNil(t, deps.Employees)
}

func TestNewServerDeps_SkipsNilModules(t *testing.T) {
	infra := testInfra(t)
	assert.NotPanics(t, func() {
		_ = NewServerDeps(infra, []Module{nil, NewFleetModule(infra)})
	})
}

func TestJWTConfig_DefaultsIssuer(t *testing.T) {
	infra := testInfra(t)

	cfg := JWTConfig(infra)
	assert.Equal(t, "cableops", cfg.Issuer)
	assert.Equal(t, 2*time.Hour, cfg.ExpiresIn)
	assert.Equal(t, []byte(infra.Config.Security.SessionSecret), cfg.SigningKey)

	infra.Config.Security.TokenIssuer = "plant-7"
	assert.Equal(t, "plant-7", JWTConfig(infra).Issuer)
}

func TestFleetModule_RegistersMachineHandlers(t *testing.T) {
	infra := testInfra(t)
	d := domain.NewEventDispatcher()
	NewFleetModule(infra).RegisterEventHandlers(d)

	for _, et := range domain.MachineStateEvents() {
		assert.True(t, d.HasHandlers(et), string(et))
	}
}

func TestModules_ShutdownIsClean(t *testing.T) {
	infra := testInfra(t)
	for _, mod := range All(infra) {
		require.NoError(t, mod.Shutdown(context.Background()), mod.Name())
	}
	var deps handlers.ServerDeps
	for _, mod := range All(infra) {
		mod.ContributeServerDeps(&deps)
	}
	assert.NotNil(t, deps.Dashboard)
}
