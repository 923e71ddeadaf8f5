// Package service implements the dashboard's read paths and single-row
// writes: listing, fetching, creating and summarizing plant records.
//
// Writes that touch more than one aggregate, or that emit domain events,
// live in the usecase package. A service never opens a transaction for a
// read; every write runs in repository.Transaction together with its
// audit record.
package service

import (
	"context"
	"time"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	apperrors "cableops.io/dashboard/internal/pkg/errors"
	"cableops.io/dashboard/internal/repository"
	"cableops.io/dashboard/internal/repository/models"
)

// Clock returns the current time. Services derive "today" from it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

func (c Clock) now() time.Time {
	if c == nil {
		return SystemClock()
	}
	return c().UTC()
}

// WindowQuery selects the rows a summary reduces. Date picks one UTC day;
// Start and End pick an explicit half-open window. With neither, the
// summary covers today.
type WindowQuery struct {
	Date  *time.Time
	Start *time.Time
	End   *time.Time
}

func (q WindowQuery) resolve(now time.Time) domain.Window {
	switch {
	case q.Date != nil:
		return domain.DayWindow(*q.Date)
	case q.Start != nil || q.End != nil:
		var w domain.Window
		if q.Start != nil {
			w.Start = q.Start.UTC()
		}
		if q.End != nil {
			w.End = q.End.UTC()
		}
		return w
	default:
		return domain.DayWindow(now)
	}
}

// Range converts an optional start/end pair into a list filter window.
func Range(start, end *time.Time) *domain.Window {
	if start == nil && end == nil {
		return nil
	}
	var w domain.Window
	if start != nil {
		w.Start = start.UTC()
	}
	if end != nil {
		w.End = end.UTC()
	}
	return &w
}

// auditor is embedded by services that record their writes.
type auditor struct {
	log *audit.Logger
}

func (a *auditor) record(ctx context.Context, action, resourceType, resourceID string, details map[string]interface{}) error {
	if a.log == nil {
		return nil
	}
	return a.log.LogAction(ctx, action, resourceType, resourceID, details)
}

func orNotFound(err error, notFound *apperrors.AppError) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return err
}

func requireMachine(ctx context.Context, machines *repository.MachineRepository, id string) error {
	ok, err := machines.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrMachineNotFound(id)
	}
	return nil
}

// ResolveOperator maps an operator name to an employee id. Unknown or
// empty names resolve to nil.
func ResolveOperator(ctx context.Context, employees *repository.EmployeeRepository, name *string) (*uint, error) {
	if name == nil || *name == "" {
		return nil, nil
	}
	emp, err := employees.FindByName(ctx, *name)
	if err != nil || emp == nil {
		return nil, err
	}
	id := emp.ID
	return &id, nil
}

func nameOf(e *models.Employee) *string {
	if e == nil {
		return nil
	}
	name := e.Name
	return &name
}

func parseEnum[E domain.Enum](field string, raw E) error {
	if _, err := domain.ParseEnum[E](field, string(raw)); err != nil {
		return apperrors.ErrInvalidEnum(field, string(raw))
	}
	return nil
}

func timestampOr(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return t.UTC()
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
