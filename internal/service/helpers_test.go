package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/testutil"
)

// fixedNow is a Saturday.
var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	return repository.New(testutil.OpenSQLite(t))
}

func seedMachine(t *testing.T, repos *repository.Repositories, id, area string, status domain.MachineStatus, oee float64) {
	t.Helper()
	require.NoError(t, repos.Machines.Create(context.Background(), &models.Machine{
		ID: id, Name: "Machine " + id, Area: area, Type: domain.MachineDrawing, Status: status, OEE: oee, TargetSpeed: 20, Temperature: 25,
	}))
}

func seedEmployee(t *testing.T, repos *repository.Repositories, number, name string) *models.Employee {
	t.Helper()
	e := &models.Employee{EmployeeNumber: number, Name: name, IsActive: true, SkillLevel: 1}
	require.NoError(t, repos.Employees.Create(context.Background(), e))
	return e
}

func requireAppError(t *testing.T, err error, code string, status int) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	require.Equal(t, status, appErr.HTTPStatus)
}

func ptr[T any](v T) *T { return &v }
