package application

import (
	"context"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
)

type ReminderRepository interface {
	// Upsert is keyed by (booking id, type); redelivery never creates a
	// second row.
	Upsert(ctx context.Context, r domain.ScheduledReminder) error
	// CancelByBooking tolerates a reminder that does not exist yet.
	CancelByBooking(ctx context.Context, bookingID string) error
	// DueOn lists reminders scheduled for the given day that are neither
	// sent nor cancelled.
	DueOn(ctx context.Context, day time.Time) ([]domain.ScheduledReminder, error)
	// Claim atomically flips sent false->true; false means another sweep
	// already claimed the row or it was cancelled in the meantime.
	Claim(ctx context.Context, bookingID, reminderType string, at time.Time) (bool, error)
	// Unclaim clears sent after a failed dispatch so the next sweep retries.
	Unclaim(ctx context.Context, bookingID, reminderType string) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type HotelCatalog interface {
	GetHotel(ctx context.Context, hotelID string) (domain.Hotel, error)
}
