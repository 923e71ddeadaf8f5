package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// harness wires use cases the way the application does: one dispatcher
// with the machine handlers registered and an audit logger on the same DB.
type harness struct {
	repos      *repository.Repositories
	dispatcher *domain.EventDispatcher
	audit      *audit.Logger
	clock      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.OpenSQLite(t)
	h := &harness{
		repos:      repository.New(db),
		dispatcher: domain.NewEventDispatcher(),
		audit:      audit.NewLogger(db),
		clock:      fixedNow,
	}
	NewMachineEventHandlers(h.repos.Machines, h.audit).Register(h.dispatcher)
	return h
}

func (h *harness) now() time.Time { return h.clock }

func (h *harness) seedMachine(t *testing.T, id string, status domain.MachineStatus) {
	t.Helper()
	require.NoError(t, h.repos.Machines.Create(context.Background(), &models.Machine{
		ID: id, Name: "Machine " + id, Area: "Drawing", Type: domain.MachineDrawing,
		Status: status, Speed: 10, TargetSpeed: 20, Temperature: 25,
	}))
}

func (h *harness) seedTask(t *testing.T, id, machineID string, status domain.MaintenanceStatus) {
	t.Helper()
	require.NoError(t, h.repos.Maintenance.Create(context.Background(), &models.MaintenanceTask{
		ID: id, MachineID: machineID, Type: domain.MaintenanceCorrective, Status: status,
		Title: "Replace die", Priority: 3,
	}))
}

func (h *harness) seedWorkOrder(t *testing.T, id, machineID string, status domain.WorkOrderStatus) {
	t.Helper()
	require.NoError(t, h.repos.WorkOrders.Create(context.Background(), &models.WorkOrder{
		ID: id, Customer: "SEC", Product: "NYY 4x16", MachineID: machineID,
		Priority: domain.PriorityMedium, Status: status, QuantityOrdered: 1000,
	}))
}

func (h *harness) machine(t *testing.T, id string) *models.Machine {
	t.Helper()
	m, err := h.repos.Machines.Get(context.Background(), id)
	require.NoError(t, err)
	return m
}

func (h *harness) auditActions(t *testing.T) []string {
	t.Helper()
	rows, err := h.audit.Recent(context.Background(), 100)
	require.NoError(t, err)
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Action)
	}
	return out
}

// recorder captures dispatched events of one type.
type recorder struct {
	mu     sync.Mutex
	events []*domain.DomainEvent
}

func (r *recorder) handle(_ context.Context, e *domain.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
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
