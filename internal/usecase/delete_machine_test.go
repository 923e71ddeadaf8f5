package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
)

func TestDeleteMachine(t *testing.T) {
	h := newHarness(t)
	h.seedMachine(t, "DR-01", domain.MachineIdle)
	h.seedMachine(t, "DR-02", domain.MachineRunning)
	h.seedWorkOrder(t, "WO-2026-001", "DR-02", domain.WorkOrderPending)
	uc := NewDeleteMachine(h.repos).WithAuditLogger(h.audit)
	ctx := context.Background()

	res, err := uc.Execute(ctx, "DR-01")
	require.NoError(t, err)
	assert.Equal(t, "Machine deleted successfully", res.Message)
	assert.Equal(t, "DR-01", res.MachineID)

	ok, err := h.repos.Machines.Exists(ctx, "DR-01")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, h.auditActions(t), "machine.deleted")

	_, err = uc.Execute(ctx, "DR-01")
	requireAppError(t, err, apperrors.CodeMachineNotFound, http.StatusNotFound)

	_, err = uc.Execute(ctx, "DR-02")
	requireAppError(t, err, apperrors.CodeMachineInUse, http.StatusBadRequest)
	ok, err = h.repos.Machines.Exists(ctx, "DR-02")
	require.NoError(t, err)
	assert.True(t, ok)
}
