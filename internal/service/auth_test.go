package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository/models"
)

func TestAuthService_RegisterAndAuthenticate(t *testing.T) {
	repos := newRepos(t)
	svc := NewAuthService(repos).WithHashCost(bcrypt.MinCost).WithAuditLogger(audit.NewLogger(repos.DB))
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "ops@example.com", Username: "ops", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.HashedPassword)

	got, err := svc.Authenticate(ctx, LoginInput{Username: "ops", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	var logged models.AuditLog
	require.NoError(t, repos.DB.Where("action = ?", "user.registered").First(&logged).Error)
	assert.Equal(t, "ops", logged.Actor)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	svc := NewAuthService(newRepos(t)).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "other", Password: "password1"})
	requireAppError(t, err, apperrors.CodeEmailExists, http.StatusBadRequest)

	_, err = svc.Register(ctx, RegisterInput{Email: "b@example.com", Username: "alice", Password: "password1"})
	requireAppError(t, err, apperrors.CodeUsernameExists, http.StatusBadRequest)
}

func TestAuthService_AuthenticateFailuresLookAlike(t *testing.T) {
	repos := newRepos(t)
	svc := NewAuthService(repos).WithHashCost(bcrypt.MinCost)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "alice", Password: "password1"})
	require.NoError(t, err)
	hash, err := svc.HashPassword("password2")
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(ctx, &models.User{
		Email: "b@example.com", Username: "bob", HashedPassword: hash, Role: domain.RoleViewer, IsActive: false,
	}))

	for name, in := range map[string]LoginInput{
		"unknown user":   {Username: "carol", Password: "password1"},
		"wrong password": {Username: "alice", Password: "password2"},
		"inactive user":  {Username: "bob", Password: "password2"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, in)
			requireAppError(t, err, apperrors.CodeInvalidCredentials, http.StatusUnauthorized)
		})
	}
}
