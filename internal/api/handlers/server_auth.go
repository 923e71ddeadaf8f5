package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cableops.io/dashboard/internal/api/middleware"
	"cableops.io/dashboard/internal/pkg/logger"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/service"
)

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserRole    string `json:"user_role"`
	Username    string `json:"username"`
}

// Login handles POST /auth/login. The credentials may be sent as JSON or
// as form fields.
func (s *Server) Login(c *gin.Context) {
	var in service.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	user, err := s.auth.Authenticate(c.Request.Context(), in)
	if err != nil {
		logger.Warn("Login failed", zap.String("username", in.Username))
		_ = c.Error(err)
		return
	}
	s.respondWithToken(c, user)
}

// Register handles POST /auth/register.
func (s *Server) Register(c *gin.Context) {
	var in service.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	s.respondWithToken(c, user)
}

func (s *Server) respondWithToken(c *gin.Context, user *models.User) {
	token, _, err := middleware.GenerateToken(s.jwtCfg, user.Username, string(user.Role))
	if err != nil {
		_ = c.Error(fmt.Errorf("issue token for %s: %w", user.Username, err))
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserRole:    string(user.Role),
		Username:    user.Username,
	})
}
