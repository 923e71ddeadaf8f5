package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/service"
	"cableops.io/dashboard/internal/usecase"
)

// ListWorkOrders handles GET /production/work-orders.
func (s *Server) ListWorkOrders(c *gin.Context) {
	var f repository.WorkOrderFilter
	var err error
	if f.Priority, err = enumParam[domain.Priority](c, "priority"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Status, err = enumParam[domain.WorkOrderStatus](c, "status"); err != nil {
		_ = c.Error(err)
		return
	}
	if f.Limit, err = limitParam(c, repository.RecordLimit); err != nil {
		_ = c.Error(err)
		return
	}
	f.MachineID = c.Query("machine_id")
	f.Customer = c.Query("customer")

	rows, err := s.production.ListWorkOrders(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetWorkOrder handles GET /production/work-orders/{id}.
func (s *Server) GetWorkOrder(c *gin.Context) {
	wo, err := s.production.GetWorkOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

// CreateWorkOrder handles POST /production/work-orders.
func (s *Server) CreateWorkOrder(c *gin.Context) {
	var in service.CreateWorkOrderInput
	if !bindJSON(c, &in) {
		return
	}
	wo, err := s.production.CreateWorkOrder(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

// UpdateWorkOrder handles PUT /production/work-orders/{id}.
func (s *Server) UpdateWorkOrder(c *gin.Context) {
	var in usecase.UpdateWorkOrderInput
	if !bindJSON(c, &in) {
		return
	}
	wo, err := s.updateWorkOrder.Execute(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

// ListProductionLogs handles GET /production/logs.
func (s *Server) ListProductionLogs(c *gin.Context) {
	f, ok := s.factFilter(c)
	if !ok {
		return
	}
	rows, err := s.production.ListProductionLogs(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateProductionLog handles POST /production/logs.
func (s *Server) CreateProductionLog(c *gin.Context) {
	var in usecase.LogProductionInput
	if !bindJSON(c, &in) {
		return
	}
	log, err := s.logProduction.Execute(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// GetProductionSummary handles GET /production/logs/summary.
func (s *Server) GetProductionSummary(c *gin.Context) {
	q, err := windowParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := s.production.ProductionSummary(c.Request.Context(), q, c.Query("machine_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListDowntime handles GET /production/downtime.
func (s *Server) ListDowntime(c *gin.Context) {
	f, ok := s.factFilter(c)
	if !ok {
		return
	}
	typ, err := enumParam[domain.DowntimeType](c, "downtime_type")
	if err != nil {
		_ = c.Error(err)
		return
	}
	f.Type = string(typ)
	if f.Flag, err = boolParam(c, "is_planned"); err != nil {
		_ = c.Error(err)
		return
	}

	rows, err := s.production.ListDowntime(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// CreateDowntime handles POST /production/downtime.
func (s *Server) CreateDowntime(c *gin.Context) {
	var in service.CreateDowntimeInput
	if !bindJSON(c, &in) {
		return
	}
	log, err := s.production.CreateDowntime(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, log)
}

// GetDowntimeSummary handles GET /production/downtime/summary.
func (s *Server) GetDowntimeSummary(c *gin.Context) {
	q, err := windowParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := s.production.DowntimeSummary(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// factFilter reads the filters shared by the shop-floor log lists:
// machine_id, shift, start_date, end_date and limit.
func (s *Server) factFilter(c *gin.Context) (repository.LogFilter, bool) {
	f := repository.LogFilter{MachineID: c.Query("machine_id")}
	var err error
	if f.Shift, err = enumParam[domain.Shift](c, "shift"); err != nil {
		_ = c.Error(err)
		return f, false
	}
	if f.Window, err = rangeParams(c); err != nil {
		_ = c.Error(err)
		return f, false
	}
	if f.Limit, err = limitParam(c, repository.FactLimit); err != nil {
		_ = c.Error(err)
		return f, false
	}
	return f, true
}
