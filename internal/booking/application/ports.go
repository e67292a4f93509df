package application

import (
	"context"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

// TransitionFields carries the optional columns a transition may set.
type TransitionFields struct {
	CancelReason *string
	CancelledAt  *time.Time
	Rating       *int
	Feedback     *string
	LateCheckout *bool
}

type BookingRepository interface {
	// SaveWithOutbox persists the booking, its guests and the outbox row in a
	// single transaction.
	SaveWithOutbox(ctx context.Context, b domain.Booking, guests []domain.BookingGuest, eventType string, payload []byte, headers map[string]string, traceparent string) error
	// TransitionWithOutbox compare-and-sets the status column against the
	// allowed set and writes the outbox row in the same transaction. Losing
	// the race yields *domain.InvalidTransitionError with the actual state.
	TransitionWithOutbox(ctx context.Context, id string, allowed []domain.Status, to domain.Status, fields TransitionFields, eventType string, payload []byte, headers map[string]string, traceparent string) error
	Get(ctx context.Context, id string) (domain.Booking, error)
	Guests(ctx context.Context, bookingID string) ([]domain.BookingGuest, error)
}

// HoldStore is the inventory collaborator. Consume failures come back as
// *domain.HoldConsumptionError; Release is idempotent.
type HoldStore interface {
	Consume(ctx context.Context, holdID string) error
	Release(ctx context.Context, holdID string) error
}
