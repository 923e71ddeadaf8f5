package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"cableops.io/dashboard/internal/domain"
)

// List limits. Callers validate limit against the ceiling before querying.
const (
	DefaultLimit = 100
	// RecordLimit caps lists of current-state records (work orders,
	// maintenance tasks, emulsion logs, employees).
	RecordLimit = 500
	// FactLimit caps lists of shop-floor facts (production, downtime,
	// quality and scrap logs).
	FactLimit = 1000
)

// LogFilter narrows a list of timestamped machine facts. Type and Flag
// apply to the log's own classification column (downtime_type,
// scrap_type) and boolean verdict (is_planned, passed, is_within_spec).
type LogFilter struct {
	MachineID string
	Shift     domain.Shift
	Type      string
	Flag      *bool
	Window    *domain.Window
	Limit     int
}

// factColumns names the per-table columns LogFilter.Type and Flag map to.
type factColumns struct {
	typ  string
	flag string
}

func (f LogFilter) scopes(cols factColumns) []func(*gorm.DB) *gorm.DB {
	scopes := []func(*gorm.DB) *gorm.DB{
		ByMachine(f.MachineID),
		Equals("shift", string(f.Shift)),
		InWindow("timestamp", f.Window),
		Limit(f.Limit),
	}
	if cols.typ != "" {
		scopes = append(scopes, Equals(cols.typ, f.Type))
	}
	if cols.flag != "" {
		scopes = append(scopes, IsTrue(cols.flag, f.Flag))
	}
	return scopes
}

// IsTrue filters a boolean column when want is set.
func IsTrue(column string, want *bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if want == nil {
			return db
		}
		return db.Where(column+" = ?", *want)
	}
}

// ByMachine filters on machine_id when id is set.
func ByMachine(id string) func(*gorm.DB) *gorm.DB {
	return Equals("machine_id", id)
}

// Equals filters column = value when value is non-empty.
func Equals(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// ContainsFold is a case-insensitive substring match on column.
func ContainsFold(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		v := strings.TrimSpace(value)
		if v == "" {
			return db
		}
		return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(v)+"%")
	}
}

// InWindow filters column into the half-open window when w is set.
func InWindow(column string, w *domain.Window) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if w == nil {
			return db
		}
		if !w.Start.IsZero() {
			db = db.Where(column+" >= ?", w.Start.UTC())
		}
		if !w.End.IsZero() {
			db = db.Where(column+" < ?", w.End.UTC())
		}
		return db
	}
}

// Limit applies limit, or DefaultLimit when it is not positive.
func Limit(limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db.Limit(DefaultLimit)
		}
		return db.Limit(limit)
	}
}

// numberingAttempts bounds the retries of createNumbered.
const numberingAttempts = 3

// createNumbered inserts row under the id produced by next. Each insert runs
// in its own savepoint, so a concurrent writer that took the same id costs a
// retry with a fresh id instead of aborting the caller's transaction.
func createNumbered(ctx context.Context, db *gorm.DB, row interface{}, setID func(string), next func(context.Context) (string, error)) error {
	var err error
	for attempt := 0; attempt < numberingAttempts; attempt++ {
		var id string
		if id, err = next(ctx); err != nil {
			return err
		}
		setID(id)
		err = DB(ctx, db).Transaction(func(tx *gorm.DB) error {
			return tx.Create(row).Error
		})
		if !IsUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("no free id after %d attempts: %w", numberingAttempts, err)
}

// nextSequence returns the first free id of the form format(n) for
// n = row count + 1, n+1, ...
func nextSequence(ctx context.Context, db *gorm.DB, model interface{}, format func(n int64) string) (string, error) {
	var count int64
	if err := DB(ctx, db).Model(model).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count rows: %w", err)
	}
	for n := count + 1; ; n++ {
		id := format(n)
		var taken int64
		if err := DB(ctx, db).Model(model).Where("id = ?", id).Count(&taken).Error; err != nil {
			return "", fmt.Errorf("check id %s: %w", id, err)
		}
		if taken == 0 {
			return id, nil
		}
	}
}
