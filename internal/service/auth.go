package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Email    string  `json:"email" binding:"required,email,max=255"`
	Username string  `json:"username" binding:"required,min=3,max=100"`
	Password string  `json:"password" binding:"required,min=8,max=72"`
	FullName *string `json:"full_name" binding:"omitempty,max=200"`
}

// LoginInput is the body of POST /auth/login, as JSON or form fields.
type LoginInput struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AuthService checks credentials and registers accounts. Token issuing is
// left to the HTTP layer.
type AuthService struct {
	auditor
	repos *repository.Repositories
	cost  int
}

func NewAuthService(repos *repository.Repositories) *AuthService {
	return &AuthService{repos: repos, cost: bcrypt.DefaultCost}
}

// WithAuditLogger sets the audit logger (optional dependency).
func (s *AuthService) WithAuditLogger(al *audit.Logger) *AuthService {
	s.log = al
	return s
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// HashPassword hashes a password with the service's cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func errBadCredentials() *apperrors.AppError {
	return apperrors.Unauthorized(apperrors.CodeInvalidCredentials, "Incorrect username or password")
}

// Authenticate returns the active user matching the credentials. Unknown
// users, wrong passwords and inactive accounts fail alike.
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*models.User, error) {
	u, err := s.repos.Users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil || !u.IsActive {
		return nil, errBadCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(in.Password)); err != nil {
		return nil, errBadCredentials()
	}
	return u, nil
}

// Register creates an active operator account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: hash,
		FullName:       in.FullName,
		Role:           domain.RoleOperator,
		IsActive:       true,
	}

	err = repository.Transaction(ctx, s.repos.DB, func(ctx context.Context) error {
		taken, err := s.repos.Users.EmailExists(ctx, in.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict(apperrors.CodeEmailExists, "Email already registered")
		}
		if taken, err = s.repos.Users.UsernameExists(ctx, in.Username); err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict(apperrors.CodeUsernameExists, "Username already registered")
		}
		if err := s.repos.Users.Create(ctx, u); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperrors.Conflict(apperrors.CodeUsernameExists, "Username already registered")
			}
			return fmt.Errorf("create user: %w", err)
		}
		return s.record(audit.WithActor(ctx, u.Username), "user.registered", "user", fmt.Sprint(u.ID), nil)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
