package application

import (
	"context"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/domain"
)

type BillRepository interface {
	// Create inserts the bill unless one already exists for the booking id;
	// the bool reports whether a row was actually written.
	Create(ctx context.Context, b domain.Bill) (bool, error)
	GetByBookingID(ctx context.Context, bookingID string) (domain.Bill, error)
	// MarkPaid flips GENERATED -> PAID; any other current state is rejected.
	MarkPaid(ctx context.Context, bookingID string, at time.Time) error
}
