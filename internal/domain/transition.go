package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrIllegalTransition is returned when a status change leaves a terminal state.
var ErrIllegalTransition = errors.New("illegal status transition")

// Terminal reports whether no further status change is allowed.
func (s MaintenanceStatus) Terminal() bool {
	return s == MaintenanceCompleted || s == MaintenanceCancelled
}

// Terminal reports whether no further status change is allowed.
func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCancelled
}

// MaintenanceProgress is the mutable lifecycle slice of a maintenance task.
type MaintenanceProgress struct {
	Status              MaintenanceStatus
	ActualStart         *time.Time
	ActualEnd           *time.Time
	ActualDurationHours *float64
}

// Transition moves the task to next, stamping actual_start on entering
// in-progress and actual_end plus the derived duration on completion.
// Stamps are only written when unset, so re-entering a status is a no-op.
// It returns true when this call completed the task.
func (p *MaintenanceProgress) Transition(next MaintenanceStatus, now time.Time) (bool, error) {
	if !next.Valid() {
		return false, fmt.Errorf("maintenance status %q: %w", next, ErrIllegalTransition)
	}
	if p.Status != next && p.Status.Terminal() {
		return false, fmt.Errorf("maintenance task %s -> %s: %w", p.Status, next, ErrIllegalTransition)
	}

	completedNow := next == MaintenanceCompleted && p.Status != MaintenanceCompleted
	p.Status = next

	switch next {
	case MaintenanceInProgress:
		if p.ActualStart == nil {
			p.ActualStart = timePtr(now)
		}
	case MaintenanceCompleted:
		if p.ActualEnd == nil {
			p.ActualEnd = timePtr(now)
		}
		if p.ActualDurationHours == nil && p.ActualStart != nil {
			hours := Round2(p.ActualEnd.Sub(*p.ActualStart).Hours())
			p.ActualDurationHours = &hours
		}
	}
	return completedNow, nil
}

// TotalCost is recomputed from its parts on every update.
func TotalCost(labor, parts float64) float64 {
	return labor + parts
}

// WorkOrderProgress is the mutable lifecycle slice of a work order.
type WorkOrderProgress struct {
	Status    WorkOrderStatus
	Progress  float64
	StartDate *time.Time
	EndDate   *time.Time
}

// Apply applies an optional status change and then the auto-completion
// rule: progress at or above 100 forces completed, even without a status.
func (p *WorkOrderProgress) Apply(next *WorkOrderStatus, now time.Time) error {
	if next != nil {
		if !next.Valid() {
			return fmt.Errorf("work order status %q: %w", *next, ErrIllegalTransition)
		}
		if p.Status != *next && p.Status.Terminal() {
			return fmt.Errorf("work order %s -> %s: %w", p.Status, *next, ErrIllegalTransition)
		}
		p.Status = *next
		switch *next {
		case WorkOrderInProgress:
			if p.StartDate == nil {
				p.StartDate = timePtr(now)
			}
		case WorkOrderCompleted:
			if p.EndDate == nil {
				p.EndDate = timePtr(now)
			}
		}
	}

	if p.Progress >= 100 {
		p.Status = WorkOrderCompleted
		if p.EndDate == nil {
			p.EndDate = timePtr(now)
		}
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
