package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
)

// ListMachines handles GET /machines.
func (s *Server) ListMachines(c *gin.Context) {
	status, err := enumParam[domain.MachineStatus](c, "status")
	if err != nil {
		_ = c.Error(err)
		return
	}
	typ, err := enumParam[domain.MachineType](c, "type")
	if err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := s.machines.List(c.Request.Context(), repository.MachineFilter{
		Area:   c.Query("area"),
		Status: status,
		Type:   typ,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetMachineStats handles GET /machines/stats.
func (s *Server) GetMachineStats(c *gin.Context) {
	stats, err := s.machines.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetAreaOEE handles GET /machines/oee/{area}.
func (s *Server) GetAreaOEE(c *gin.Context) {
	oee, err := s.machines.AreaOEE(c.Request.Context(), c.Param("area"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, oee)
}

// GetMachine handles GET /machines/{id}.
func (s *Server) GetMachine(c *gin.Context) {
	m, err := s.machines.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// CreateMachine handles POST /machines.
func (s *Server) CreateMachine(c *gin.Context) {
	var in service.CreateMachineInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := s.machines.Create(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMachine handles PUT /machines/{id}.
func (s *Server) UpdateMachine(c *gin.Context) {
	var in service.UpdateMachineInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := s.machines.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMachineStatus handles PUT /machines/{id}/status.
func (s *Server) UpdateMachineStatus(c *gin.Context) {
	var in service.UpdateMachineStatusInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := s.machines.UpdateStatus(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteMachine handles DELETE /machines/{id}.
func (s *Server) DeleteMachine(c *gin.Context) {
	res, err := s.deleteMachine.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}
