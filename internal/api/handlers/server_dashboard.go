package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/service"
)

// GetOverview handles GET /dashboard/overview.
func (s *Server) GetOverview(c *gin.Context) {
	overview, err := s.dashboard.Overview(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetKPIs handles GET /dashboard/kpis.
func (s *Server) GetKPIs(c *gin.Context) {
	kpis, err := s.dashboard.KPIs(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// GetOEEByArea handles GET /dashboard/oee/by-area.
func (s *Server) GetOEEByArea(c *gin.Context) {
	rows, err := s.machines.OEEByArea(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetCapacity handles GET /dashboard/capacity.
func (s *Server) GetCapacity(c *gin.Context) {
	rows, err := s.dashboard.Capacity(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListPlants handles GET /dashboard/capacity/plants.
func (s *Server) ListPlants(c *gin.Context) {
	rows, err := s.dashboard.ListPlants(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreatePlant handles POST /dashboard/capacity/plants.
func (s *Server) CreatePlant(c *gin.Context) {
	var in service.CreatePlantInput
	if !bindJSON(c, &in) {
		return
	}
	plant, err := s.dashboard.CreatePlant(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// UpdatePlant handles PUT /dashboard/capacity/plants/{id}.
func (s *Server) UpdatePlant(c *gin.Context) {
	var in service.UpdatePlantInput
	if !bindJSON(c, &in) {
		return
	}
	plant, err := s.dashboard.UpdatePlant(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// GetWorkforce handles GET /dashboard/workforce.
func (s *Server) GetWorkforce(c *gin.Context) {
	rows, err := s.dashboard.Workforce(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateWorkforce handles POST /dashboard/workforce.
func (s *Server) CreateWorkforce(c *gin.Context) {
	var in service.CreateWorkforceInput
	if !bindJSON(c, &in) {
		return
	}
	rec, err := s.dashboard.CreateWorkforce(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetHourlyTrend handles GET /dashboard/trends/hourly.
func (s *Server) GetHourlyTrend(c *gin.Context) {
	date, err := timeParam(c, "date")
	if err != nil {
		_ = c.Error(err)
		return
	}
	points, err := s.dashboard.HourlyTrend(c.Request.Context(), date)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetWeeklyTrend handles GET /dashboard/trends/weekly.
func (s *Server) GetWeeklyTrend(c *gin.Context) {
	points, err := s.dashboard.WeeklyTrend(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// GetDashboardHealth handles GET /dashboard/health.
func (s *Server) GetDashboardHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.Health())
}
