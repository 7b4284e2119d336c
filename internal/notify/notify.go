// Package notify delivers introduction lifecycle events: persisted in-app
// notifications, NATS subjects and an optional outbound webhook.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Helmus101/confluence/internal/entity"
	"github.com/Helmus101/confluence/internal/repository"
)

// Event is one lifecycle occurrence addressed to a single user.
type Event struct {
	ID             uuid.UUID  `json:"id"`
	Type           string     `json:"type"`
	UserID         uuid.UUID  `json:"user_id"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	IntroRequestID *uuid.UUID `json:"intro_request_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Emitter delivers events. Callers treat errors as non-fatal.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, event Event) error

// Emit calls f.
func (f EmitterFunc) Emit(ctx context.Context, event Event) error { return f(ctx, event) }

// Nop discards every event.
var Nop Emitter = EmitterFunc(func(context.Context, Event) error { return nil })

func (e Event) withDefaults() Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return e
}

// StoreEmitter persists events as in-app notifications.
type StoreEmitter struct {
	repo repository.NotificationsRepository
}

// NewStoreEmitter wires a notifications repository.
func NewStoreEmitter(repo repository.NotificationsRepository) *StoreEmitter {
	return &StoreEmitter{repo: repo}
}

// Emit stores the event for its recipient.
func (s *StoreEmitter) Emit(ctx context.Context, event Event) error {
	event = event.withDefaults()
	_, err := s.repo.Create(ctx, entity.Notification{
		ID:             event.ID,
		UserID:         event.UserID,
		Type:           event.Type,
		Title:          event.Title,
		Message:        event.Message,
		IntroRequestID: event.IntroRequestID,
		CreatedAt:      event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// Multi fans an event out to every emitter and joins their errors.
type Multi []Emitter

// Emit delivers to all emitters even when some fail.
func (m Multi) Emit(ctx context.Context, event Event) error {
	event = event.withDefaults()
	var errs []error
	for _, e := range m {
		if e == nil {
			continue
		}
		if err := e.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
