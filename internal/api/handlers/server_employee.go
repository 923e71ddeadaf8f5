package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
)

// ListEmployees handles GET /employees.
func (s *Server) ListEmployees(c *gin.Context) {
	f := repository.EmployeeFilter{
		Department: c.Query("department"),
		Shift:      c.Query("shift"),
	}
	var err error
	if f.Active, err = boolParam(c, "is_active"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Limit, err = limitParam(c, repository.RecordLimit); err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := s.employees.List(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetEmployee handles GET /employees/{id}.
func (s *Server) GetEmployee(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	e, err := s.employees.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// CreateEmployee handles POST /employees.
func (s *Server) CreateEmployee(c *gin.Context) {
	var in service.CreateEmployeeInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := s.employees.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, e)
}
