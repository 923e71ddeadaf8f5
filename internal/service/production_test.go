package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

func TestProductionService_CreateWorkOrder(t *testing.T) {
	repos := newRepos(t)
	svc := NewProductionService(repos, fixedClock)
	ctx := context.Background()
	seedMachine(t, repos, "D-01", "Drawing", domain.MachineIdle, 0)

	wo, err := svc.CreateWorkOrder(ctx, CreateWorkOrderInput{
		Customer: "Saudi Electricity", Product: "NYY 4x16", MachineID: "D-01", QuantityOrdered: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "WO-2026-0001", wo.ID)
	assert.Equal(t, domain.WorkOrderPending, wo.Status)
	assert.Equal(t, domain.PriorityMedium, wo.Priority)
	assert.Zero(t, wo.Progress)

	wo, err = svc.CreateWorkOrder(ctx, CreateWorkOrderInput{
		Customer: "Riyadh Metro", Product: "N2XSY", MachineID: "D-01", QuantityOrdered: 3, Priority: domain.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "WO-2026-0002", wo.ID)

	got, err := svc.GetWorkOrder(ctx, "WO-2026-0002")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
}

func TestProductionService_CreateWorkOrderValidation(t *testing.T) {
	repos := newRepos(t)
	svc := NewProductionService(repos, fixedClock)
	seedMachine(t, repos, "D-01", "Drawing", domain.MachineIdle, 0)

	_, err := svc.CreateWorkOrder(context.Background(), CreateWorkOrderInput{
		Customer: "c", Product: "p", MachineID: "NOPE", QuantityOrdered: 1,
	})
	requireAppError(t, err, apperrors.CodeMachineNotFound, http.StatusNotFound)

	_, err = svc.CreateWorkOrder(context.Background(), CreateWorkOrderInput{
		Customer: "c", Product: "p", MachineID: "D-01", QuantityOrdered: 1, Priority: "urgent",
	})
	requireAppError(t, err, apperrors.CodeInvalidEnum, http.StatusUnprocessableEntity)

	_, err = svc.GetWorkOrder(context.Background(), "WO-2026-9999")
	requireAppError(t, err, apperrors.CodeWorkOrderNotFound, http.StatusNotFound)
}

func TestProductionService_ProductionSummaryForDay(t *testing.T) {
	repos := newRepos(t)
	svc := NewProductionService(repos, fixedClock)
	ctx := context.Background()
	seedMachine(t, repos, "D-01", "Drawing", domain.MachineRunning, 0)
	seedMachine(t, repos, "D-02", "Drawing", domain.MachineRunning, 0)

	for _, l := range []models.ProductionLog{
		{MachineID: "D-01", Shift: domain.ShiftMorning, Timestamp: fixedNow.Add(-2 * time.Hour), Speed: 10, OutputLength: ptr(100.0), OutputWeight: ptr(50.0)},
		{MachineID: "D-01", Shift: domain.ShiftMorning, Timestamp: fixedNow.Add(-time.Hour), Speed: 20, OutputLength: ptr(300.0)},
		{MachineID: "D-02", Shift: domain.ShiftMorning, Timestamp: fixedNow, Speed: 30, OutputWeight: ptr(25.0)},
		{MachineID: "D-01", Shift: domain.ShiftNight, Timestamp: fixedNow.AddDate(0, 0, -1), Speed: 99},
	} {
		l := l
		require.NoError(t, repos.Facts.CreateProduction(ctx, &l))
	}

	sum, err := svc.ProductionSummary(ctx, WindowQuery{}, "")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.LogCount)
	assert.Equal(t, 400.0, sum.TotalOutputLength)
	assert.Equal(t, 75.0, sum.TotalOutputWeight)
	assert.Equal(t, 20.0, sum.AverageSpeed)

	sum, err = svc.ProductionSummary(ctx, WindowQuery{}, "D-01")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.LogCount)

	yesterday := fixedNow.AddDate(0, 0, -1)
	sum, err = svc.ProductionSummary(ctx, WindowQuery{Date: &yesterday}, "")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.LogCount)
}

func TestProductionService_DowntimeCreateAndSummary(t *testing.T) {
	repos := newRepos(t)
	svc := NewProductionService(repos, fixedClock)
	ctx := context.Background()
	seedMachine(t, repos, "D-01", "Drawing", domain.MachineStopped, 0)
	seedEmployee(t, repos, "E-1", "Omar")

	log, err := svc.CreateDowntime(ctx, CreateDowntimeInput{
		MachineID: "D-01", Shift: domain.ShiftMorning, OperatorName: ptr("Omar"),
		DowntimeType: domain.DowntimeMechanical, DurationMinutes: 45, Reason: "bearing",
	})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, log.Timestamp, "timestamp defaults to the clock")
	require.NotNil(t, log.OperatorName)
	assert.Equal(t, "Omar", *log.OperatorName)

	_, err = svc.CreateDowntime(ctx, CreateDowntimeInput{
		MachineID: "D-01", Shift: domain.ShiftEvening, DowntimeType: domain.DowntimeBreak,
		DurationMinutes: 30, Reason: "prayer", IsPlanned: true,
	})
	require.NoError(t, err)

	_, err = svc.CreateDowntime(ctx, CreateDowntimeInput{
		MachineID: "D-01", Shift: "afternoon", DowntimeType: domain.DowntimeBreak, DurationMinutes: 5, Reason: "x",
	})
	requireAppError(t, err, apperrors.CodeInvalidEnum, http.StatusUnprocessableEntity)

	sum, err := svc.DowntimeSummary(ctx, WindowQuery{})
	require.NoError(t, err)
	assert.Equal(t, 75, sum.TotalMinutes)
	assert.Equal(t, 30, sum.PlannedMinutes)
	assert.Equal(t, 45, sum.UnplannedMinutes)
	var byType int
	for _, m := range sum.ByType {
		byType += m
	}
	assert.Equal(t, sum.TotalMinutes, byType)

	planned := true
	rows, err := svc.ListDowntime(ctx, repository.LogFilter{Flag: &planned})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.DowntimeBreak, rows[0].DowntimeType)
	assert.Nil(t, rows[0].OperatorName)
}
