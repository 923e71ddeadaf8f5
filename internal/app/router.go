package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/api/middleware"
	"cableops.io/dashboard/internal/api/openapi"
	"cableops.io/dashboard/internal/config"
	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

// defaultOrigins are the frontend dev servers allowed when no origins are configured.
var defaultOrigins = []string{"http://localhost:3000", "http://localhost:8000"}

func newRouter(cfg *config.Config, server *handlers.Server, jwtCfg middleware.JWTConfig) (*gin.Engine, error) {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		cors.New(buildCORSConfig(cfg)),
		middleware.ErrorHandler(),
	)

	router.GET("/health/live", server.GetLiveness)
	router.GET("/health/ready", server.GetReadiness)

	prefix := cfg.Server.APIPrefix
	router.GET(prefix+"/openapi.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/yaml", openapi.Document())
	})

	api := router.Group(prefix)
	if cfg.Security.RequireAuth {
		api.Use(jwtSkipPublic(publicPrefixes(prefix), jwtCfg))
		api.Use(rbacDeleteRoutes())
	}
	contract, err := middleware.NewOpenAPIValidator(middleware.OpenAPIOptions{
		BasePath:  prefix,
		Requests:  cfg.Server.OpenAPI.Requests,
		Responses: cfg.Server.OpenAPI.Responses,
	})
	if err != nil {
		return nil, fmt.Errorf("init openapi validator: %w", err)
	}
	api.Use(contract)
	registerRoutes(api, server, cfg.Security.RequireAuth)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorBody{
			Detail: "Not Found",
			Code:   apperrors.CodeRouteNotFound,
		})
	})
	return router, nil
}

// publicPrefixes are the API routes that do NOT require JWT authentication.
func publicPrefixes(apiPrefix string) []string {
	return []string{
		apiPrefix + "/auth/",
		apiPrefix + "/dashboard/health",
	}
}

// jwtSkipPublic returns middleware that applies JWT auth only on non-public routes.
func jwtSkipPublic(public []string, jwtCfg middleware.JWTConfig) gin.HandlerFunc {
	jwtMw := middleware.JWTAuth(jwtCfg)
	return func(c *gin.Context) {
		for _, prefix := range public {
			if strings.HasPrefix(c.Request.URL.Path, prefix) {
				c.Next()
				return
			}
		}
		jwtMw(c)
	}
}

// rbacDeleteRoutes restricts every DELETE to admins and supervisors.
func rbacDeleteRoutes() gin.HandlerFunc {
	deleteMw := middleware.RequireRole(domain.RoleAdmin, domain.RoleSupervisor)
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodDelete {
			deleteMw(c)
			return
		}
		c.Next()
	}
}

func registerRoutes(api *gin.RouterGroup, s *handlers.Server, requireAuth bool) {
	auth := api.Group("/auth")
	auth.POST("/login", s.Login)
	auth.POST("/register", s.Register)

	machines := api.Group("/machines")
	machines.GET("", s.ListMachines)
	machines.POST("", s.CreateMachine)
	machines.GET("/stats", s.GetMachineStats)
	machines.GET("/oee/:area", s.GetAreaOEE)
	machines.GET("/:id", s.GetMachine)
	machines.PUT("/:id", s.UpdateMachine)
	machines.DELETE("/:id", s.DeleteMachine)
	machines.PUT("/:id/status", s.UpdateMachineStatus)

	production := api.Group("/production")
	production.GET("/work-orders", s.ListWorkOrders)
	production.POST("/work-orders", s.CreateWorkOrder)
	production.GET("/work-orders/:id", s.GetWorkOrder)
	production.PUT("/work-orders/:id", s.UpdateWorkOrder)
	production.GET("/logs", s.ListProductionLogs)
	production.POST("/logs", s.CreateProductionLog)
	production.GET("/logs/summary", s.GetProductionSummary)
	production.GET("/downtime", s.ListDowntime)
	production.POST("/downtime", s.CreateDowntime)
	production.GET("/downtime/summary", s.GetDowntimeSummary)

	quality := api.Group("/quality")
	quality.GET("/checks", s.ListQualityChecks)
	quality.POST("/checks", s.CreateQualityCheck)
	quality.GET("/checks/summary", s.GetQualitySummary)
	quality.GET("/checks/:id", s.GetQualityCheck)
	quality.GET("/scrap", s.ListScrap)
	quality.POST("/scrap", s.CreateScrap)
	quality.GET("/scrap/summary", s.GetScrapSummary)
	quality.GET("/scrap/codes", s.ListScrapCodes)
	quality.GET("/scrap/:id", s.GetScrap)
	quality.GET("/lme-price", s.GetLMEPrice)

	maintenance := api.Group("/maintenance")
	maintenance.GET("/tasks", s.ListMaintenanceTasks)
	maintenance.POST("/tasks", s.CreateMaintenanceTask)
	maintenance.GET("/tasks/:id", s.GetMaintenanceTask)
	maintenance.PUT("/tasks/:id", s.UpdateMaintenanceTask)
	maintenance.DELETE("/tasks/:id", s.DeleteMaintenanceTask)
	maintenance.GET("/summary", s.GetMaintenanceSummary)
	maintenance.GET("/emulsion", s.ListEmulsionLogs)
	maintenance.POST("/emulsion", s.CreateEmulsionLog)
	maintenance.GET("/emulsion/latest", s.GetLatestEmulsion)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/overview", s.GetOverview)
	dashboard.GET("/kpis", s.GetKPIs)
	dashboard.GET("/oee/by-area", s.GetOEEByArea)
	dashboard.GET("/capacity", s.GetCapacity)
	dashboard.GET("/capacity/plants", s.ListPlants)
	dashboard.POST("/capacity/plants", s.CreatePlant)
	dashboard.PUT("/capacity/plants/:id", s.UpdatePlant)
	dashboard.GET("/workforce", s.GetWorkforce)
	dashboard.POST("/workforce", s.CreateWorkforce)
	dashboard.GET("/trends/hourly", s.GetHourlyTrend)
	dashboard.GET("/trends/weekly", s.GetWeeklyTrend)
	dashboard.GET("/health", s.GetDashboardHealth)

	employees := api.Group("/employees")
	employees.GET("", s.ListEmployees)
	employees.POST("", s.CreateEmployee)
	employees.GET("/:id", s.GetEmployee)

	admin := api.Group("/admin")
	if requireAuth {
		admin.Use(middleware.RequireRole(domain.RoleAdmin))
	}
	admin.GET("/log-level", s.GetLogLevel)
	admin.PUT("/log-level", s.SetLogLevel)
}

// buildCORSConfig turns the server settings into a gin-contrib/cors config.
// A "*" origin is honoured only with the unsafe flag, and never together
// with credentials. An empty allowlist falls back to the local dev servers.
func buildCORSConfig(cfg *config.Config) cors.Config {
	out := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}

	if cfg.Server.UnsafeAllowAllOrigins {
		out.AllowAllOrigins = true
		return out
	}

	origins := make([]string, 0, len(cfg.Server.AllowedOrigins))
	for _, o := range cfg.Server.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" || o == "*" {
			continue
		}
		origins = append(origins, o)
	}
	if len(origins) == 0 {
		origins = append(origins, defaultOrigins...)
	}
	out.AllowOrigins = origins
	out.AllowCredentials = cfg.Server.AllowCredentials
	return out
}
