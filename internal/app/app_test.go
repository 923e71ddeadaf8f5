package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/api/middleware"
	"cableops.io/dashboard/internal/app/modules"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/testutil"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func testConfig(requireAuth bool) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "test", Version: "1.0.0"},
		Server: config.ServerConfig{
			APIPrefix: "/api",
			OpenAPI:   config.OpenAPIValidationConfig{Requests: true, Responses: true},
		},
		Security: config.SecurityConfig{
			SessionSecret: "test-session-secret-0123456789abcdef",
			TokenLifetime: time.Hour,
			RequireAuth:   requireAuth,
		},
		Pricing: config.PricingConfig{LMECopperUSDPerMT: 9500, USDToSAR: 3.75},
		Dashboard: config.DashboardConfig{
			DailyTargetMT: 180,
			PlantAreas: []config.PlantAreas{
				{Plant: "PCP-1", Areas: []string{"PCP-1"}},
				{Plant: "PCP-2", Areas: []string{"PCP-2"}},
			},
		},
	}
}

func newTestApp(t *testing.T, requireAuth bool) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig(requireAuth)
	infra := modules.NewInfrastructureFromGorm(cfg, testutil.OpenSQLite(t), fakePinger{})
	app, err := Compose(infra)
	require.NoError(t, err)
	return app
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body middleware.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func tokenFor(t *testing.T, app *Application, username, role string) string {
	t.Helper()
	jwtCfg := middleware.JWTConfig{
		SigningKey: []byte(app.Config.Security.SessionSecret),
		Issuer:     "cableops",
		ExpiresIn:  time.Hour,
	}
	token, _, err := middleware.GenerateToken(jwtCfg, username, role)
	require.NoError(t, err)
	return token
}

func TestRouter_PublicRoutesSkipAuth(t *testing.T) {
	app := newTestApp(t, true)

	for _, path := range []string{"/health/live", "/health/ready", "/api/dashboard/health"} {
		w := do(t, app.Router, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_ProtectedRouteRequiresToken(t *testing.T) {
	app := newTestApp(t, true)

	w := do(t, app.Router, http.MethodGet, "/api/machines", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeTokenMissing, errorCode(t, w))

	w = do(t, app.Router, http.MethodGet, "/api/machines", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeTokenInvalid, errorCode(t, w))
}

func TestRouter_RegisterThenUseToken(t *testing.T) {
	app := newTestApp(t, true)

	w := do(t, app.Router, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "operator@example.com",
		"username": "operator1",
		"password": "line-shift-42",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tok handlers.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tok))
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "operator", tok.UserRole)
	assert.Equal(t, "operator1", tok.Username)

	w = do(t, app.Router, http.MethodGet, "/api/machines", nil, tok.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, app.Router, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "operator1",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeInvalidCredentials, errorCode(t, w))
}

func TestRouter_DeleteRequiresAdminOrSupervisor(t *testing.T) {
	app := newTestApp(t, true)

	w := do(t, app.Router, http.MethodDelete, "/api/machines/CV-01", nil, tokenFor(t, app, "op", "operator"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, w))

	w = do(t, app.Router, http.MethodDelete, "/api/machines/CV-01", nil, tokenFor(t, app, "sup", "supervisor"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeMachineNotFound, errorCode(t, w))
}

func TestRouter_MachineLifecycle(t *testing.T) {
	app := newTestApp(t, true)
	admin := tokenFor(t, app, "admin", "admin")

	w := do(t, app.Router, http.MethodPost, "/api/machines", map[string]interface{}{
		"id":           "CV-01",
		"name":         "CV Line 1",
		"area":         "PCP-1",
		"type":         "cv-line",
		"target_speed": 120,
	}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, app.Router, http.MethodGet, "/api/machines/stats", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, app.Router, http.MethodGet, "/api/machines/CV-01", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, app.Router, http.MethodDelete, "/api/machines/CV-01", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "Machine deleted successfully", res["message"])
	assert.Equal(t, "CV-01", res["machine_id"])
}

func TestRouter_LimitOutOfRange(t *testing.T) {
	app := newTestApp(t, false)

	for _, q := range []string{"limit=0", "limit=501", "limit=abc"} {
		w := do(t, app.Router, http.MethodGet, "/api/production/work-orders?"+q, nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, q)
		assert.Equal(t, apperrors.CodeInvalidQuery, errorCode(t, w), q)
	}
}

func TestRouter_AuthDisabledServesWithoutToken(t *testing.T) {
	app := newTestApp(t, false)

	w := do(t, app.Router, http.MethodGet, "/api/dashboard/overview", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, app.Router, http.MethodDelete, "/api/maintenance/tasks/MT-404", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeTaskNotFound, errorCode(t, w))
}

func TestRouter_UnknownRoute(t *testing.T) {
	app := newTestApp(t, true)

	w := do(t, app.Router, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.CodeRouteNotFound, errorCode(t, w))
}

func TestRouter_ReadinessReportsDatabaseFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(true)
	infra := modules.NewInfrastructureFromGorm(cfg, testutil.OpenSQLite(t), fakePinger{err: errors.New("down")})
	app, err := Compose(infra)
	require.NoError(t, err)

	w := do(t, app.Router, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body handlers.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
}

func TestRouter_ServesOpenAPIDocument(t *testing.T) {
	app := newTestApp(t, true)

	w := do(t, app.Router, http.MethodGet, "/api/openapi.yaml", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "/admin/log-level:")
}

func TestRouter_LogLevelIsAdminOnly(t *testing.T) {
	app := newTestApp(t, true)
	admin := tokenFor(t, app, "admin", "admin")
	initial := logger.GetLevel().String()
	t.Cleanup(func() { _ = logger.SetLevel(initial) })

	w := do(t, app.Router, http.MethodGet, "/api/admin/log-level", nil, tokenFor(t, app, "op", "operator"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperrors.CodeForbidden, errorCode(t, w))

	w = do(t, app.Router, http.MethodPut, "/api/admin/log-level", map[string]string{"level": "warn"}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "warn", logger.GetLevel().String())
}

func TestRouter_RejectsOutOfContractRequest(t *testing.T) {
	app := newTestApp(t, true)
	admin := tokenFor(t, app, "admin", "admin")
	initial := logger.GetLevel()

	w := do(t, app.Router, http.MethodPut, "/api/admin/log-level", map[string]string{"level": "verbose"}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, apperrors.CodeOpenAPIRequest, errorCode(t, w))
	assert.Equal(t, initial, logger.GetLevel())
}

func TestRequireMachineStateHandlers(t *testing.T) {
	d := domain.NewEventDispatcher()
	err := requireMachineStateHandlers(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(domain.EventMaintenanceCompleted))

	noop := func(context.Context, *domain.DomainEvent) error { return nil }
	for _, et := range domain.MachineStateEvents() {
		d.Register(et, noop)
	}
	assert.NoError(t, requireMachineStateHandlers(d))
}
