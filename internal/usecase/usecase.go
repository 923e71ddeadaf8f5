// Package usecase holds the writes that change more than one row or raise
// domain events.
//
// Every use case runs in a single repository.Transaction. Domain events
// are dispatched synchronously inside it, so a failing event handler rolls
// back the write that raised the event.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/governance/audit"
	"cableops.io/dashboard/internal/service"
)

type payload interface {
	ToJSON() ([]byte, error)
}

func newEvent(ctx context.Context, typ domain.EventType, aggregateType, aggregateID string, p payload, now time.Time) (*domain.DomainEvent, error) {
	body, err := p.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return &domain.DomainEvent{
		EventID:       newEventID(),
		EventType:     typ,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Payload:       body,
		CreatedBy:     audit.ActorFrom(ctx),
		CreatedAt:     now,
	}, nil
}

func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func clockOrSystem(c service.Clock) func() time.Time {
	if c == nil {
		return service.SystemClock
	}
	return func() time.Time { return c().UTC() }
}
