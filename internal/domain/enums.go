// Package domain holds the plant vocabulary (statuses, types, shifts), the
// status-transition rules for work orders and maintenance tasks, and the
// pure metric reductions behind every summary endpoint.
//
// Nothing in this package touches the database; services map stored rows
// into the small fact structs declared here and reduce them.
package domain

import "fmt"

// MachineStatus is the operating state of a machine.
type MachineStatus string

const (
	MachineRunning     MachineStatus = "running"
	MachineIdle        MachineStatus = "idle"
	MachineStopped     MachineStatus = "stopped"
	MachineMaintenance MachineStatus = "maintenance"
)

// Valid reports whether s is a known machine status.
func (s MachineStatus) Valid() bool {
	switch s {
	case MachineRunning, MachineIdle, MachineStopped, MachineMaintenance:
		return true
	}
	return false
}

// MachineType classifies equipment on the shop floor.
type MachineType string

const (
	MachineDrawing    MachineType = "drawing"
	MachineBunching   MachineType = "bunching"
	MachineArmoring   MachineType = "armoring"
	MachineExtrusion  MachineType = "extrusion"
	MachineStranding  MachineType = "stranding"
	MachineProcessing MachineType = "processing"
	MachineJacketing  MachineType = "jacketing"
	MachineCVLine     MachineType = "cv-line"
	MachineRewinding  MachineType = "rewinding"
	MachineStorage    MachineType = "storage"
)

func (t MachineType) Valid() bool {
	switch t {
	case MachineDrawing, MachineBunching, MachineArmoring, MachineExtrusion, MachineStranding,
		MachineProcessing, MachineJacketing, MachineCVLine, MachineRewinding, MachineStorage:
		return true
	}
	return false
}

// Shift is one of the three production shifts.
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftEvening Shift = "evening"
	ShiftNight   Shift = "night"
)

func (s Shift) Valid() bool {
	return s == ShiftMorning || s == ShiftEvening || s == ShiftNight
}

// Priority ranks work orders.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// WorkOrderStatus is the lifecycle state of a work order.
type WorkOrderStatus string

const (
	WorkOrderPending    WorkOrderStatus = "pending"
	WorkOrderInProgress WorkOrderStatus = "in-progress"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderOnHold     WorkOrderStatus = "on-hold"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

func (s WorkOrderStatus) Valid() bool {
	switch s {
	case WorkOrderPending, WorkOrderInProgress, WorkOrderCompleted, WorkOrderOnHold, WorkOrderCancelled:
		return true
	}
	return false
}

// DowntimeType buckets downtime causes.
type DowntimeType string

const (
	DowntimeMechanical DowntimeType = "mechanical"
	DowntimeElectrical DowntimeType = "electrical"
	DowntimeMaterial   DowntimeType = "material"
	DowntimeSetup      DowntimeType = "setup"
	DowntimeQuality    DowntimeType = "quality"
	DowntimeBreak      DowntimeType = "break"
	DowntimeOther      DowntimeType = "other"
)

func (t DowntimeType) Valid() bool {
	switch t {
	case DowntimeMechanical, DowntimeElectrical, DowntimeMaterial, DowntimeSetup,
		DowntimeQuality, DowntimeBreak, DowntimeOther:
		return true
	}
	return false
}

// ScrapType classifies scrap material.
type ScrapType string

const (
	ScrapCopperWire      ScrapType = "copper-wire"
	ScrapPVCCompound     ScrapType = "pvc-compound"
	ScrapMixedCable      ScrapType = "mixed-cable"
	ScrapAluminumWire    ScrapType = "aluminum-wire"
	ScrapInsulatedCopper ScrapType = "insulated-copper"
	ScrapXLPE            ScrapType = "xlpe"
	ScrapRubber          ScrapType = "rubber"
	ScrapSteelArmor      ScrapType = "steel-armor"
	ScrapOther           ScrapType = "other"
)

func (t ScrapType) Valid() bool {
	switch t {
	case ScrapCopperWire, ScrapPVCCompound, ScrapMixedCable, ScrapAluminumWire, ScrapInsulatedCopper,
		ScrapXLPE, ScrapRubber, ScrapSteelArmor, ScrapOther:
		return true
	}
	return false
}

// MaintenanceType classifies maintenance work.
type MaintenanceType string

const (
	MaintenancePreventive MaintenanceType = "preventive"
	MaintenanceCorrective MaintenanceType = "corrective"
	MaintenancePredictive MaintenanceType = "predictive"
	MaintenanceEmergency  MaintenanceType = "emergency"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case MaintenancePreventive, MaintenanceCorrective, MaintenancePredictive, MaintenanceEmergency:
		return true
	}
	return false
}

// MaintenanceStatus is the lifecycle state of a maintenance task.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in-progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
	MaintenanceOnHold     MaintenanceStatus = "on-hold"
)

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePending, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled, MaintenanceOnHold:
		return true
	}
	return false
}

// UserRole is the coarse authorization role carried in access tokens.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSupervisor UserRole = "supervisor"
	RoleOperator   UserRole = "operator"
	RoleViewer     UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// Enum is implemented by every string enumeration in this package.
type Enum interface {
	~string
	Valid() bool
}

// ParseEnum converts raw into E, rejecting values outside the enumeration.
func ParseEnum[E Enum](field, raw string) (E, error) {
	v := E(raw)
	if !v.Valid() {
		return v, fmt.Errorf("invalid %s: %q", field, raw)
	}
	return v, nil
}
