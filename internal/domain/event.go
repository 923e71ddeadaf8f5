package domain

import (
	"encoding/json"
	"time"
)

// EventType defines the type of domain event.
type EventType string

const (
	// Maintenance lifecycle
	EventMaintenanceStarted   EventType = "MAINTENANCE_STARTED"
	EventMaintenanceCompleted EventType = "MAINTENANCE_COMPLETED"

	// Work order lifecycle
	EventWorkOrderCompleted EventType = "WORK_ORDER_COMPLETED"

	// Shop-floor facts that touch machine state
	EventProductionLogged EventType = "PRODUCTION_LOGGED"
)

// MachineStateEvents are the events whose handlers keep machine status and
// counters in step with the records that caused them.
func MachineStateEvents() []EventType {
	return []EventType{
		EventMaintenanceCompleted,
		EventProductionLogged,
		EventWorkOrderCompleted,
	}
}

// DomainEvent is an immutable record of something that happened to an
// aggregate. Events are dispatched synchronously inside the writing
// transaction; they are not persisted.
type DomainEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	AggregateType string    `json:"aggregate_type"`
	AggregateID   string    `json:"aggregate_id"`
	Payload       []byte    `json:"payload"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// MaintenancePayload is carried by maintenance lifecycle events.
type MaintenancePayload struct {
	TaskID    string            `json:"task_id"`
	MachineID string            `json:"machine_id"`
	Type      MaintenanceType   `json:"type"`
	Status    MaintenanceStatus `json:"status"`
}

// ToJSON converts payload to JSON bytes.
func (p MaintenancePayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// WorkOrderPayload is carried by EventWorkOrderCompleted.
type WorkOrderPayload struct {
	WorkOrderID      string  `json:"work_order_id"`
	MachineID        string  `json:"machine_id"`
	QuantityProduced float64 `json:"quantity_produced"`
}

// ToJSON converts payload to JSON bytes.
func (p WorkOrderPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// ProductionPayload is carried by EventProductionLogged.
type ProductionPayload struct {
	MachineID   string   `json:"machine_id"`
	Speed       float64  `json:"speed"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// ToJSON converts payload to JSON bytes.
func (p ProductionPayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}

// DecodePayload unmarshals an event payload into v.
func DecodePayload[T any](event *DomainEvent) (T, error) {
	var v T
	err := json.Unmarshal(event.Payload, &v)
	return v, err
}
