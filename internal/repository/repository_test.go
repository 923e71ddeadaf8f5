package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
	"cableops.io/dashboard/internal/testutil"
)

func seedMachine(t *testing.T, db *gorm.DB, id, area string, status domain.MachineStatus) {
	t.Helper()
	require.NoError(t, db.Create(&models.Machine{
		ID: id, Name: "Machine " + id, Area: area, Type: domain.MachineDrawing, Status: status,
	}).Error)
}

func TestTransaction_RollsBackEveryRepositoryCall(t *testing.T) {
	db := testutil.OpenSQLite(t)
	machines := NewMachineRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := Transaction(ctx, db, func(ctx context.Context) error {
		require.NoError(t, machines.Create(ctx, &models.Machine{ID: "D-01", Name: "Drawing 1", Area: "Drawing", Type: domain.MachineDrawing, Status: domain.MachineIdle}))
		exists, err := machines.Exists(ctx, "D-01")
		require.NoError(t, err)
		require.True(t, exists, "write must be visible inside the transaction")
		return boom
	})
	require.ErrorIs(t, err, boom)

	exists, err := machines.Exists(ctx, "D-01")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransaction_NestedCallJoinsOuter(t *testing.T) {
	db := testutil.OpenSQLite(t)
	machines := NewMachineRepository(db)

	err := Transaction(context.Background(), db, func(ctx context.Context) error {
		outer, _ := TxFrom(ctx)
		return Transaction(ctx, db, func(inner context.Context) error {
			tx, ok := TxFrom(inner)
			require.True(t, ok)
			assert.Same(t, outer, tx)
			return machines.Create(inner, &models.Machine{ID: "E-01", Name: "Extruder", Area: "Extrusion", Type: domain.MachineExtrusion, Status: domain.MachineIdle})
		})
	})
	require.NoError(t, err)

	exists, err := machines.Exists(context.Background(), "E-01")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMaintenanceRepository_NextIDSkipsTakenIDs(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineIdle)

	id, err := repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MT-0001", id)

	for _, id := range []string{"MT-0001", "MT-0002"} {
		require.NoError(t, repo.Create(ctx, &models.MaintenanceTask{
			ID: id, MachineID: "D-01", Type: domain.MaintenancePreventive, Status: domain.MaintenancePending, Title: "Check", Priority: 3,
		}))
	}
	require.NoError(t, repo.Delete(ctx, "MT-0001"))

	id, err = repo.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "MT-0003", id, "count+1 collides with MT-0002 and must be skipped")
}

func TestCreateNumbered_RetriesTakenIDInsideTransaction(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineIdle)

	require.NoError(t, repo.Create(ctx, &models.MaintenanceTask{
		ID: "MT-0001", MachineID: "D-01", Type: domain.MaintenancePreventive, Status: domain.MaintenancePending, Title: "Check", Priority: 3,
	}))

	// A concurrent writer committed MT-0001 after this caller read the count.
	handedOut := []string{"MT-0001", "MT-0002"}
	calls := 0
	next := func(context.Context) (string, error) {
		id := handedOut[calls]
		calls++
		return id, nil
	}

	task := &models.MaintenanceTask{
		MachineID: "D-01", Type: domain.MaintenanceCorrective, Status: domain.MaintenancePending, Title: "Bearing", Priority: 2,
	}
	err := Transaction(ctx, db, func(ctx context.Context) error {
		if err := createNumbered(ctx, db, task, func(id string) { task.ID = id }, next); err != nil {
			return err
		}
		// The transaction is still usable after the rejected insert.
		_, err := repo.Get(ctx, task.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "MT-0002", task.ID)

	got, err := repo.Get(ctx, "MT-0002")
	require.NoError(t, err)
	assert.Equal(t, "Bearing", got.Title)
}

func TestCreateNumbered_GivesUpAfterRepeatedCollisions(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewMaintenanceRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineIdle)
	require.NoError(t, repo.Create(ctx, &models.MaintenanceTask{
		ID: "MT-0001", MachineID: "D-01", Type: domain.MaintenancePreventive, Status: domain.MaintenancePending, Title: "Check", Priority: 3,
	}))

	task := &models.MaintenanceTask{
		MachineID: "D-01", Type: domain.MaintenanceCorrective, Status: domain.MaintenancePending, Title: "Bearing", Priority: 2,
	}
	err := createNumbered(ctx, db, task, func(id string) { task.ID = id }, func(context.Context) (string, error) {
		return "MT-0001", nil
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestRepositories_CreateNumbered(t *testing.T) {
	db := testutil.OpenSQLite(t)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineIdle)

	task := &models.MaintenanceTask{
		MachineID: "D-01", Type: domain.MaintenancePreventive, Status: domain.MaintenancePending, Title: "Check", Priority: 3,
	}
	require.NoError(t, NewMaintenanceRepository(db).CreateNumbered(ctx, task))
	assert.Equal(t, "MT-0001", task.ID)

	wo := &models.WorkOrder{
		Customer: "Riyadh Metro", Product: "NYY 4x16", MachineID: "D-01",
		Priority: domain.PriorityHigh, Status: domain.WorkOrderPending, QuantityOrdered: 5,
	}
	require.NoError(t, NewWorkOrderRepository(db).CreateNumbered(ctx, wo, 2026))
	assert.Equal(t, "WO-2026-0001", wo.ID)
}

func TestWorkOrderRepository_NextIDAndListOrdering(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewWorkOrderRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineIdle)

	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, customer := range []string{"Saudi Electricity", "Riyadh Metro", "saudi aramco"} {
		id, err := repo.NextID(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("WO-2026-%04d", i+1), id)
		d := due.AddDate(0, 0, -i)
		require.NoError(t, repo.Create(ctx, &models.WorkOrder{
			ID: id, Customer: customer, Product: "NYY 4x16", MachineID: "D-01",
			Priority: domain.PriorityMedium, Status: domain.WorkOrderPending, QuantityOrdered: 10, DueDate: &d,
		}))
	}

	rows, err := repo.List(ctx, WorkOrderFilter{Customer: "SAUDI"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WO-2026-0003", rows[0].ID, "earliest due date first")
	assert.Equal(t, "WO-2026-0001", rows[1].ID)

	rows, err = repo.List(ctx, WorkOrderFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestFactRepository_ListNewestFirstAndWindow(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewFactRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineRunning)
	seedMachine(t, db, "E-01", "Extrusion", domain.MachineRunning)

	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	for i, machine := range []string{"D-01", "E-01", "D-01"} {
		require.NoError(t, repo.CreateDowntime(ctx, &models.DowntimeLog{
			MachineID: machine, Shift: domain.ShiftMorning, Timestamp: base.Add(time.Duration(i) * time.Hour),
			DowntimeType: domain.DowntimeMechanical, DurationMinutes: 10 * (i + 1), Reason: "bearing",
		}))
	}
	require.NoError(t, repo.CreateDowntime(ctx, &models.DowntimeLog{
		MachineID: "D-01", Shift: domain.ShiftNight, Timestamp: base.AddDate(0, 0, -1),
		DowntimeType: domain.DowntimeSetup, DurationMinutes: 5, Reason: "changeover",
	}))

	rows, err := repo.ListDowntime(ctx, LogFilter{MachineID: "D-01"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 30, rows[0].DurationMinutes, "newest first")

	day := domain.DayWindow(base)
	inDay, err := repo.DowntimeIn(ctx, day, "")
	require.NoError(t, err)
	assert.Len(t, inDay, 3)

	night, err := repo.ListDowntime(ctx, LogFilter{Shift: domain.ShiftNight})
	require.NoError(t, err)
	require.Len(t, night, 1)
	assert.Equal(t, "changeover", night[0].Reason)
}

func TestLatestPerKey(t *testing.T) {
	db := testutil.OpenSQLite(t)
	plants := NewPlantRepository(db)
	facts := NewFactRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineRunning)
	seedMachine(t, db, "D-02", "Drawing", domain.MachineRunning)

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Plant{ID: "PCP-1", Name: "PCP-1", DesignCapacityMT: 100, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Plant{ID: "PCP-2", Name: "PCP-2", DesignCapacityMT: 100, IsActive: true}).Error)
	for i, plant := range []string{"PCP-1", "PCP-1", "PCP-2"} {
		require.NoError(t, plants.CreateWorkforce(ctx, &models.WorkforceRecord{
			PlantID: plant, Date: day.AddDate(0, 0, i), TotalPositions: 100 + i, FilledPositions: 50,
		}))
	}
	latest, err := plants.LatestWorkforce(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "PCP-1", latest[0].PlantID)
	assert.Equal(t, 101, latest[0].TotalPositions)
	assert.Equal(t, 102, latest[1].TotalPositions)

	for i, machine := range []string{"D-01", "D-02", "D-01"} {
		require.NoError(t, facts.CreateEmulsion(ctx, &models.EmulsionLog{
			MachineID: machine, Timestamp: day.Add(time.Duration(i) * time.Hour), PHLevel: 8.5 + float64(i)/10,
		}))
	}
	emulsion, err := facts.LatestEmulsion(ctx)
	require.NoError(t, err)
	require.Len(t, emulsion, 2)
	assert.Equal(t, "D-01", emulsion[0].MachineID)
	assert.InDelta(t, 8.7, emulsion[0].PHLevel, 1e-9)
}

func TestMachineRepository_HasHistoryAndAreas(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewMachineRepository(db)
	ctx := context.Background()
	seedMachine(t, db, "D-01", "Drawing", domain.MachineRunning)
	seedMachine(t, db, "C-01", "CV Line", domain.MachineStopped)

	has, err := repo.HasHistory(ctx, "D-01")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, NewFactRepository(db).CreateProduction(ctx, &models.ProductionLog{
		MachineID: "D-01", Shift: domain.ShiftMorning, Timestamp: time.Now().UTC(), Speed: 10,
	}))
	has, err = repo.HasHistory(ctx, "D-01")
	require.NoError(t, err)
	assert.True(t, has)

	areas, err := repo.Areas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CV Line", "Drawing"}, areas)

	ids, err := repo.IDsInAreas(ctx, []string{"Drawing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D-01"}, ids)
}

func TestEmployeeRepository_FindByName(t *testing.T) {
	db := testutil.OpenSQLite(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Employee{EmployeeNumber: "E001", Name: "Ahmed Al-Rashid", IsActive: true, SkillLevel: 3}))

	e, err := repo.FindByName(ctx, "Ahmed Al-Rashid")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "E001", e.EmployeeNumber)

	e, err = repo.FindByName(ctx, "ahmed al-rashid")
	require.NoError(t, err)
	assert.Nil(t, e, "name match is exact")
}

func TestIsUniqueViolation(t *testing.T) {
	db := testutil.OpenSQLite(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{Email: "a@plant.sa", Username: "a", HashedPassword: "x", Role: domain.RoleOperator, IsActive: true}))
	err := users.Create(ctx, &models.User{Email: "a@plant.sa", Username: "b", HashedPassword: "x", Role: domain.RoleOperator, IsActive: true})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(nil))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", gorm.ErrRecordNotFound)))
}
