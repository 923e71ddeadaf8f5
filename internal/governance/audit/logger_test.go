package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/testutil"
)

func TestActorFrom(t *testing.T) {
	assert.Equal(t, SystemActor, ActorFrom(context.Background()))
	assert.Equal(t, SystemActor, ActorFrom(WithActor(context.Background(), "")))
	assert.Equal(t, "shiftsup", ActorFrom(WithActor(context.Background(), "shiftsup")))
}

func TestLogAction_RecordsActorAndDetails(t *testing.T) {
	db := testutil.OpenSQLite(t)
	l := NewLogger(db)
	ctx := WithActor(context.Background(), "admin")

	require.NoError(t, l.LogAction(ctx, "machine.created", "machine", "CV-1", map[string]interface{}{"area": "PCP-1"}))
	require.NoError(t, l.LogStatusChange(ctx, "machine", "CV-1", "running", "stopped"))

	rows, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.True(t, strings.HasPrefix(r.ID, "audit-"), r.ID)
		assert.Equal(t, "admin", r.Actor)
		assert.Equal(t, "CV-1", r.ResourceID)
	}

	var change, created bool
	for _, r := range rows {
		switch r.Action {
		case "machine.status_changed":
			change = true
			assert.Equal(t, "running", r.Details["from"])
			assert.Equal(t, "stopped", r.Details["to"])
		case "machine.created":
			created = true
			assert.Equal(t, "PCP-1", r.Details["area"])
		}
	}
	assert.True(t, change)
	assert.True(t, created)
}

func TestLogAction_RollsBackWithTransaction(t *testing.T) {
	db := testutil.OpenSQLite(t)
	l := NewLogger(db)
	boom := errors.New("boom")

	err := repository.Transaction(context.Background(), db, func(ctx context.Context) error {
		require.NoError(t, l.LogAction(ctx, "employee.created", "employee", "1", nil))
		return boom
	})
	require.ErrorIs(t, err, boom)

	rows, err := l.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
