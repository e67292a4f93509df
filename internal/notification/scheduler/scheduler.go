// Package scheduler runs the periodic reminder sweep, independent of the
// event-consumption path.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
)

type Scheduler struct {
	log       *slog.Logger
	reminders application.ReminderRepository
	catalog   application.HotelCatalog
	mailer    application.Mailer
	period    time.Duration
	now       func() time.Time
}

func New(log *slog.Logger, reminders application.ReminderRepository, catalog application.HotelCatalog, mailer application.Mailer, period time.Duration) *Scheduler {
	return &Scheduler{
		log:       log,
		reminders: reminders,
		catalog:   catalog,
		mailer:    mailer,
		period:    period,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.period)
	defer t.Stop()

	s.log.Info("reminder scheduler started", "period", s.period.String())
	for {
		select {
		case <-ctx.Done():
			s.log.Info("reminder scheduler stopped")
			return nil
		case <-t.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep dispatches every reminder due today. Each reminder is handled in
// isolation; one failure never stops the rest of the batch. The atomic claim
// on the sent flag is what keeps concurrent sweeps from double-sending.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.now()
	today := now.Truncate(24 * time.Hour)

	due, err := s.reminders.DueOn(ctx, today)
	if err != nil {
		s.log.Error("reminder sweep query failed", "err", err)
		return
	}

	for _, rem := range due {
		if err := s.dispatch(ctx, rem, now); err != nil {
			s.log.Error("reminder dispatch failed, will retry next sweep",
				"booking_id", rem.BookingID, "type", rem.Type, "err", err)
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, rem domain.ScheduledReminder, now time.Time) error {
	// hotel details first: a failed lookup has no side effect and the
	// reminder stays unclaimed for the next cycle
	hotel, err := s.catalog.GetHotel(ctx, rem.HotelID)
	if err != nil {
		return fmt.Errorf("hotel lookup: %w", err)
	}

	claimed, err := s.reminders.Claim(ctx, rem.BookingID, rem.Type, now)
	if err != nil {
		return fmt.Errorf("claim: %w", err)
	}
	if !claimed {
		// another sweep sent it, or the booking got cancelled meanwhile
		return nil
	}

	subject := "Your check-in is coming up"
	body := fmt.Sprintf("Hi %s, a reminder that your check-in at %s (%s) is on %s.",
		rem.GuestName, hotel.Name, hotel.City, rem.CheckInDate.Format("2006-01-02"))
	if err := s.mailer.Send(ctx, rem.GuestEmail, subject, body); err != nil {
		if uerr := s.reminders.Unclaim(ctx, rem.BookingID, rem.Type); uerr != nil {
			s.log.Error("unclaim after failed send failed", "booking_id", rem.BookingID, "err", uerr)
		}
		return fmt.Errorf("send: %w", err)
	}

	s.log.Info("check-in reminder sent", "booking_id", rem.BookingID, "to", rem.GuestEmail)
	return nil
}
