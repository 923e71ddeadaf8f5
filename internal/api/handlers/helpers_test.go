package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/api/middleware"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/testutil"
	"cableops.io/dashboard/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("error", "json")
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type testEnv struct {
	router *gin.Engine
	repos  *repository.Repositories
}

// newTestEnv serves every handler over a fresh SQLite database, without
// authentication. Every documented response is checked against the
// OpenAPI contract.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.OpenSQLite(t)
	repos := repository.New(db)
	al := audit.NewLogger(db)
	dispatcher := domain.NewEventDispatcher()
	usecase.NewMachineEventHandlers(repos.Machines, al).Register(dispatcher)

	clock := service.SystemClock
	server := NewServer(ServerDeps{
		DB: okPinger{},
		JWTCfg: middleware.JWTConfig{
			SigningKey: []byte("handlers-test-secret-0123456789ab"),
			Issuer:     "cableops",
			ExpiresIn:  time.Hour,
		},
		Machines:    service.NewMachineService(repos).WithAuditLogger(al),
		Production:  service.NewProductionService(repos, clock).WithAuditLogger(al),
		Quality:     service.NewQualityService(repos, config.PricingConfig{LMECopperUSDPerMT: 9500, USDToSAR: 3.75}, clock).WithAuditLogger(al),
		Maintenance: service.NewMaintenanceService(repos, clock).WithAuditLogger(al),
		Dashboard: service.NewDashboardService(repos, config.DashboardConfig{DailyTargetMT: 60},
			config.DemoConfig{Enabled: true}, "9.9.9", clock),
		Employees:       service.NewEmployeeService(repos).WithAuditLogger(al),
		Auth:            service.NewAuthService(repos).WithAuditLogger(al),
		UpdateTask:      usecase.NewUpdateMaintenanceTask(repos, dispatcher, clock).WithAuditLogger(al),
		UpdateWorkOrder: usecase.NewUpdateWorkOrder(repos, dispatcher, clock).WithAuditLogger(al),
		LogProduction:   usecase.NewLogProduction(repos, dispatcher, clock).WithAuditLogger(al),
		DeleteMachine:   usecase.NewDeleteMachine(repos).WithAuditLogger(al),
	})

	r := gin.New()
	r.Use(middleware.ErrorHandler(), middleware.MustOpenAPIValidator(middleware.OpenAPIOptions{Responses: true}))
	r.GET("/health/ready", server.GetReadiness)
	r.GET("/health/live", server.GetLiveness)

	r.POST("/auth/register", server.Register)
	r.POST("/auth/login", server.Login)

	r.GET("/machines", server.ListMachines)
	r.POST("/machines", server.CreateMachine)
	r.GET("/machines/stats", server.GetMachineStats)
	r.GET("/machines/oee/:area", server.GetAreaOEE)
	r.GET("/machines/:id", server.GetMachine)
	r.PUT("/machines/:id", server.UpdateMachine)
	r.DELETE("/machines/:id", server.DeleteMachine)
	r.PUT("/machines/:id/status", server.UpdateMachineStatus)

	r.GET("/production/work-orders", server.ListWorkOrders)
	r.POST("/production/work-orders", server.CreateWorkOrder)
	r.GET("/production/work-orders/:id", server.GetWorkOrder)
	r.PUT("/production/work-orders/:id", server.UpdateWorkOrder)
	r.GET("/production/logs", server.ListProductionLogs)
	r.POST("/production/logs", server.CreateProductionLog)
	r.GET("/production/logs/summary", server.GetProductionSummary)
	r.POST("/production/downtime", server.CreateDowntime)
	r.GET("/production/downtime", server.ListDowntime)

	r.POST("/quality/scrap", server.CreateScrap)
	r.GET("/quality/scrap/codes", server.ListScrapCodes)
	r.GET("/quality/scrap/:id", server.GetScrap)
	r.GET("/quality/checks/:id", server.GetQualityCheck)
	r.GET("/quality/lme-price", server.GetLMEPrice)

	r.POST("/maintenance/tasks", server.CreateMaintenanceTask)
	r.GET("/maintenance/tasks/:id", server.GetMaintenanceTask)
	r.PUT("/maintenance/tasks/:id", server.UpdateMaintenanceTask)
	r.DELETE("/maintenance/tasks/:id", server.DeleteMaintenanceTask)
	r.GET("/maintenance/emulsion", server.ListEmulsionLogs)
	r.POST("/maintenance/emulsion", server.CreateEmulsionLog)

	r.GET("/dashboard/health", server.GetDashboardHealth)
	r.GET("/dashboard/overview", server.GetOverview)
	r.GET("/dashboard/capacity", server.GetCapacity)
	r.GET("/dashboard/trends/hourly", server.GetHourlyTrend)

	r.GET("/employees", server.ListEmployees)
	r.POST("/employees", server.CreateEmployee)
	r.GET("/employees/:id", server.GetEmployee)

	r.GET("/admin/log-level", server.GetLogLevel)
	r.PUT("/admin/log-level", server.SetLogLevel)

	return &testEnv{router: r, repos: repos}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[middleware.ErrorBody](t, w).Code
}

// createMachine posts a running cv-line machine in area PCP-1.
func (e *testEnv) createMachine(t *testing.T, id string) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/machines", map[string]interface{}{
		"id":           id,
		"name":         "Line " + id,
		"area":         "PCP-1",
		"type":         "cv-line",
		"status":       "running",
		"speed":        100,
		"target_speed": 120,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
