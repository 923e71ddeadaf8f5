package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// ListMaintenanceTasks handles GET /maintenance/tasks.
func (s *Server) ListMaintenanceTasks(c *gin.Context) {
	f := repository.TaskFilter{
		MachineID: c.Query("machine_id"),
		Assignee:  c.Query("assignee"),
	}
	var err error
	if f.Status, err = enumParam[domain.MaintenanceStatus](c, "status"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Type, err = enumParam[domain.MaintenanceType](c, "type"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Limit, err = limitParam(c, repository.RecordLimit); err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := s.maintenance.ListTasks(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetMaintenanceTask handles GET /maintenance/tasks/{id}.
func (s *Server) GetMaintenanceTask(c *gin.Context) {
	task, err := s.maintenance.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateMaintenanceTask handles POST /maintenance/tasks.
func (s *Server) CreateMaintenanceTask(c *gin.Context) {
	var in service.CreateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := s.maintenance.CreateTask(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateMaintenanceTask handles PUT /maintenance/tasks/{id}.
func (s *Server) UpdateMaintenanceTask(c *gin.Context) {
	var in usecase.UpdateMaintenanceTaskInput
	if !bindJSON(c, &in) {
		return
	}
	task, err := s.updateTask.Execute(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteMaintenanceTask handles DELETE /maintenance/tasks/{id}.
func (s *Server) DeleteMaintenanceTask(c *gin.Context) {
	res, err := s.maintenance.DeleteTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetMaintenanceSummary handles GET /maintenance/summary.
func (s *Server) GetMaintenanceSummary(c *gin.Context) {
	q, err := windowParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := s.maintenance.Summary(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListEmulsionLogs handles GET /maintenance/emulsion.
func (s *Server) ListEmulsionLogs(c *gin.Context) {
	f := repository.LogFilter{MachineID: c.Query("machine_id")}
	var err error
	if f.Flag, err = boolParam(c, "is_within_spec"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Window, err = rangeParams(c); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Limit, err = limitParam(c, repository.RecordLimit); err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := s.maintenance.ListEmulsion(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateEmulsionLog handles POST /maintenance/emulsion.
func (s *Server) CreateEmulsionLog(c *gin.Context) {
	var in service.CreateEmulsionInput
	if !bindJSON(c, &in) {
		return
	}
	log, err := s.maintenance.CreateEmulsion(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// GetLatestEmulsion handles GET /maintenance/emulsion/latest.
func (s *Server) GetLatestEmulsion(c *gin.Context) {
	rows, err := s.maintenance.LatestEmulsion(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
