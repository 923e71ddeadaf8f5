package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const readinessTimeout = 2 * time.Second

// HealthResponse is the body of the liveness and readiness checks.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// GetLiveness handles GET /health/live.
func (s *Server) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// GetReadiness handles GET /health/ready.
func (s *Server) GetReadiness(c *gin.Context) {
	checks := make(map[string]string)
	status, httpStatus := "ok", http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if s.db == nil || s.db.Ping(ctx) != nil {
		checks["database"] = "error"
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	c.JSON(httpStatus, HealthResponse{Status: status, Checks: checks})
}
