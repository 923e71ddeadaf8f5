package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/service"
)

// ListQualityChecks handles GET /quality/checks.
func (s *Server) ListQualityChecks(c *gin.Context) {
	f, ok := s.factFilter(c)
	if !ok {
		return
	}
	var err error
	if f.Flag, err = boolParam(c, "passed"); err != nil {
		_ = c.Error(err)
		return
	}
	rows, err := s.quality.ListChecks(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetQualityCheck handles GET /quality/checks/{id}.
func (s *Server) GetQualityCheck(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	qc, err := s.quality.GetCheck(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, qc)
}

// CreateQualityCheck handles POST /quality/checks.
func (s *Server) CreateQualityCheck(c *gin.Context) {
	var in service.CreateQualityCheckInput
	if !bindJSON(c, &in) {
		return
	}
	qc, err := s.quality.CreateCheck(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, qc)
}

// GetQualitySummary handles GET /quality/checks/summary.
func (s *Server) GetQualitySummary(c *gin.Context) {
	q, err := windowParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := s.quality.CheckSummary(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListScrap handles GET /quality/scrap.
func (s *Server) ListScrap(c *gin.Context) {
	f, ok := s.factFilter(c)
	if !ok {
		return
	}
	typ, err := enumParam[domain.ScrapType](c, "scrap_type")
	if err != nil {
		_ = c.Error(err)
		return
	}
	f.Type = string(typ)

	rows, err := s.quality.ListScrap(c.Request.Context(), f)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetScrap handles GET /quality/scrap/{id}.
func (s *Server) GetScrap(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	entry, err := s.quality.GetScrap(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// CreateScrap handles POST /quality/scrap.
func (s *Server) CreateScrap(c *gin.Context) {
	var in service.CreateScrapInput
	if !bindJSON(c, &in) {
		return
	}
	entry, err := s.quality.CreateScrap(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GetScrapSummary handles GET /quality/scrap/summary.
func (s *Server) GetScrapSummary(c *gin.Context) {
	q, err := windowParams(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	summary, err := s.quality.ScrapSummary(c.Request.Context(), q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListScrapCodes handles GET /quality/scrap/codes.
func (s *Server) ListScrapCodes(c *gin.Context) {
	codes, err := s.quality.ScrapCodes()
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

// GetLMEPrice handles GET /quality/lme-price.
func (s *Server) GetLMEPrice(c *gin.Context) {
	c.JSON(http.StatusOK, s.quality.LMEPrice())
}
