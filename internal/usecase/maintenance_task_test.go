package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

func newTaskUpdater(h *harness) *UpdateMaintenanceTask {
	return NewUpdateMaintenanceTask(h.repos, h.dispatcher, h.now).WithAuditLogger(h.audit)
}

func TestUpdateMaintenanceTask_Lifecycle(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineMaintenance)
	h.seedTask(t, "MT-0001", "DR-01", domain.MaintenancePending)
	uc := newTaskUpdater(h)
	ctx := audit.WithActor(context.Background(), "supervisor1")

	task, err := uc.Execute(ctx, "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceInProgress)})
	require.NoError(t, err)
	require.NotNil(t, task.ActualStart)
	assert.True(t, task.ActualStart.Equal(fixedNow))
	assert.Equal(t, domain.MachineMaintenance, h.machine(t, "DR-01").Status)

	// Re-entering in-progress keeps the first start stamp.
	h.clock = fixedNow.Add(30 * time.Minute)
	task, err = uc.Execute(ctx, "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceInProgress)})
	require.NoError(t, err)
	assert.True(t, task.ActualStart.Equal(fixedNow))

	h.clock = fixedNow.Add(2*time.Hour + 30*time.Minute)
	task, err = uc.Execute(ctx, "MT-0001", UpdateMaintenanceTaskInput{
		Status:    ptr(domain.MaintenanceCompleted),
		LaborCost: ptr(150.0),
		PartsCost: ptr(325.5),
	})
	require.NoError(t, err)
	require.NotNil(t, task.ActualEnd)
	require.NotNil(t, task.ActualDurationHours)
	assert.InDelta(t, 2.5, *task.ActualDurationHours, 0.001)
	assert.InDelta(t, 475.5, task.TotalCost, 0.001)

	assert.Equal(t, domain.MachineIdle, h.machine(t, "DR-01").Status)

	actions := h.auditActions(t)
	assert.Contains(t, actions, "maintenance_task.status_changed")
	assert.Contains(t, actions, "maintenance_task.updated")
	assert.Contains(t, actions, "machine.status_changed")

	rows, err := h.audit.Recent(context.Background(), 100)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, "supervisor1", r.Actor)
	}
}

func TestUpdateMaintenanceTask_CompletionLeavesRunningMachineAlone(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-02", domain.MachineRunning)
	h.seedTask(t, "MT-0001", "DR-02", domain.MaintenanceInProgress)

	task, err := newTaskUpdater(h).Execute(context.Background(), "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceCompleted)})
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceCompleted, task.Status)
	assert.Nil(t, task.ActualDurationHours, "no start stamp, no duration")
	assert.Equal(t, domain.MachineRunning, h.machine(t, "DR-02").Status)
}

func TestUpdateMaintenanceTask_ResavingCompletedTaskDoesNotMoveMachine(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineMaintenance)
	h.seedTask(t, "MT-0001", "DR-01", domain.MaintenanceCompleted)

	completed := &recorder{}
	h.dispatcher.Register(domain.EventMaintenanceCompleted, completed.handle)

	_, err := newTaskUpdater(h).Execute(context.Background(), "MT-0001", UpdateMaintenanceTaskInput{
		Status: ptr(domain.MaintenanceCompleted),
		Notes:  ptr("signed off"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, completed.count())
	assert.Equal(t, domain.MachineMaintenance, h.machine(t, "DR-01").Status)
}

func TestUpdateMaintenanceTask_Errors(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineRunning)
	h.seedTask(t, "MT-0001", "DR-01", domain.MaintenanceCancelled)
	uc := newTaskUpdater(h)
	ctx := context.Background()

	_, err := uc.Execute(ctx, "MT-9999", UpdateMaintenanceTaskInput{Title: ptr("x")})
	requireAppError(t, err, apperrors.CodeTaskNotFound, http.StatusNotFound)

	_, err = uc.Execute(ctx, "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceStatus("finished"))})
	requireAppError(t, err, apperrors.CodeInvalidEnum, http.StatusUnprocessableEntity)

	_, err = uc.Execute(ctx, "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceInProgress)})
	requireAppError(t, err, apperrors.CodeIllegalTransition, http.StatusUnprocessableEntity)
}

func TestUpdateMaintenanceTask_HandlerFailureRollsBack(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineMaintenance)
	h.seedTask(t, "MT-0001", "DR-01", domain.MaintenanceInProgress)

	boom := errors.New("downstream unavailable")
	h.dispatcher.Register(domain.EventMaintenanceCompleted, func(context.Context, *domain.DomainEvent) error {
		return boom
	})

	_, err := newTaskUpdater(h).Execute(context.Background(), "MT-0001", UpdateMaintenanceTaskInput{Status: ptr(domain.MaintenanceCompleted)})
	require.ErrorIs(t, err, boom)

	task, err := h.repos.Maintenance.Get(context.Background(), "MT-0001")
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceInProgress, task.Status)
	assert.Nil(t, task.ActualEnd)
	assert.Equal(t, domain.MachineMaintenance, h.machine(t, "DR-01").Status)
	assert.Empty(t, h.auditActions(t))
}
