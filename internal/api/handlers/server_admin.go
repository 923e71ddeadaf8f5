package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/pkg/logger"
)

// LogLevelBody is the request and response of the log-level routes.
type LogLevelBody struct {
	Level string `json:"level" binding:"required"`
}

// GetLogLevel handles GET /admin/log-level.
func (s *Server) GetLogLevel(c *gin.Context) {
	c.JSON(http.StatusOK, LogLevelBody{Level: logger.GetLevel().String()})
}

// SetLogLevel handles PUT /admin/log-level.
func (s *Server) SetLogLevel(c *gin.Context) {
	var in LogLevelBody
	if !bindJSON(c, &in) {
		return
	}
	previous := logger.GetLevel()
	if err := logger.SetLevel(in.Level); err != nil {
		_ = c.Error(apperrors.Validation(apperrors.CodeInvalidLogLevel, "unknown log level "+in.Level))
		return
	}
	logger.Info("Log level changed",
		zap.String("from", previous.String()),
		zap.String("to", logger.GetLevel().String()),
	)
	c.JSON(http.StatusOK, LogLevelBody{Level: logger.GetLevel().String()})
}
