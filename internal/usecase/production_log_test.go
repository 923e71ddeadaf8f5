package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

func TestLogProduction_UpdatesMachine(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineRunning)
	require.NoError(t, h.repos.Employees.Create(context.Background(), &models.Employee{
		EmployeeNumber: "E-100", Name: "Ahmed Ali", IsActive: true, SkillLevel: 2,
	}))
	uc := NewLogProduction(h.repos, h.dispatcher, h.now).WithAuditLogger(h.audit)

	view, err := uc.Execute(context.Background(), LogProductionInput{
		MachineID:    "DR-01",
		Shift:        domain.ShiftMorning,
		OperatorName: ptr("Ahmed Ali"),
		Speed:        ptr(18.5),
		Temperature:  ptr(41.0),
		OutputWeight: ptr(250.0),
	})
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.True(t, view.Timestamp.Equal(fixedNow))
	require.NotNil(t, view.OperatorName)
	assert.Equal(t, "Ahmed Ali", *view.OperatorName)
	assert.NotNil(t, view.OperatorID)

	m := h.machine(t, "DR-01")
	assert.InDelta(t, 18.5, m.Speed, 0.001)
	assert.InDelta(t, 41.0, m.Temperature, 0.001)
	assert.Contains(t, h.auditActions(t), "production.logged")
}

func TestLogProduction_ZeroTemperatureKeepsMachineTemperature(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineRunning)
	uc := NewLogProduction(h.repos, h.dispatcher, h.now)

	view, err := uc.Execute(context.Background(), LogProductionInput{
		MachineID:    "DR-01",
		Shift:        domain.ShiftNight,
		OperatorName: ptr("Unknown Person"),
		Speed:        ptr(0.0),
		Temperature:  ptr(0.0),
	})
	require.NoError(t, err)
	assert.Nil(t, view.OperatorID)

	m := h.machine(t, "DR-01")
	assert.Zero(t, m.Speed)
	assert.InDelta(t, 25.0, m.Temperature, 0.001)
}

func TestLogProduction_Errors(t *testing.T) {
	h := newHarness(t)
	uc := NewLogProduction(h.repos, h.dispatcher, h.now)
	ctx := context.Background()

	_, err := uc.Execute(ctx, LogProductionInput{MachineID: "NOPE", Shift: domain.ShiftMorning, Speed: ptr(1.0)})
	requireAppError(t, err, apperrors.CodeMachineNotFound, http.StatusNotFound)

	_, err = uc.Execute(ctx, LogProductionInput{MachineID: "NOPE", Shift: domain.Shift("day"), Speed: ptr(1.0)})
	requireAppError(t, err, apperrors.CodeInvalidEnum, http.StatusUnprocessableEntity)

	rows, err := h.repos.Facts.ListProduction(ctx, repository.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
