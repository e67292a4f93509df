package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
)

type Service struct {
	log    *slog.Logger
	repo   ReminderRepository
	mailer Mailer
	lead   time.Duration
}

func NewService(log *slog.Logger, repo ReminderRepository, mailer Mailer, lead time.Duration) *Service {
	return &Service{log: log, repo: repo, mailer: mailer, lead: lead}
}

// HandleConfirmed sends the confirmation mail fire-and-forget and upserts the
// check-in reminder. The mail may be lost; the reminder must not be, so an
// upsert failure is returned and the broker's redelivery drives the retry
// (the upsert key makes that safe).
func (s *Service) HandleConfirmed(ctx context.Context, ev domain.BookingConfirmed, checkIn time.Time) error {
	subject := "Your booking is confirmed"
	body := fmt.Sprintf("Hi %s, your stay from %s to %s is confirmed.", ev.GuestName, ev.CheckIn, ev.CheckOut)
	if err := s.mailer.Send(ctx, ev.GuestEmail, subject, body); err != nil {
		s.log.Error("confirmation mail failed", "booking_id", ev.BookingID, "err", err)
	}

	reminder := domain.NewCheckInReminder(ev.BookingID, ev.HotelID, ev.GuestName, ev.GuestEmail, checkIn, s.lead)
	if err := s.repo.Upsert(ctx, reminder); err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	s.log.Info("check-in reminder scheduled", "booking_id", ev.BookingID, "scheduled_date", reminder.ScheduledDate.Format("2006-01-02"))
	return nil
}

// HandleCancelled flags the booking's reminders so the scheduler never sends
// them. A reminder that does not exist yet is tolerated.
func (s *Service) HandleCancelled(ctx context.Context, ev domain.BookingCancelled) error {
	if err := s.repo.CancelByBooking(ctx, ev.BookingID); err != nil {
		return fmt.Errorf("cancel reminders: %w", err)
	}
	s.log.Info("reminders cancelled", "booking_id", ev.BookingID)

	subject := "Your booking was cancelled"
	body := fmt.Sprintf("Hi %s, your booking has been cancelled. Reason: %s", ev.GuestName, ev.Reason)
	if err := s.mailer.Send(ctx, ev.GuestEmail, subject, body); err != nil {
		s.log.Error("cancellation mail failed", "booking_id", ev.BookingID, "err", err)
	}
	return nil
}

func (s *Service) HandleCheckedIn(ctx context.Context, ev domain.BookingCheckedIn) error {
	subject := "Welcome! You are checked in"
	body := fmt.Sprintf("Hi %s, enjoy your stay in room %s.", ev.GuestName, ev.RoomID)
	if err := s.mailer.Send(ctx, ev.GuestEmail, subject, body); err != nil {
		s.log.Error("check-in mail failed", "booking_id", ev.BookingID, "err", err)
	}
	return nil
}

func (s *Service) HandleCheckoutCompleted(ctx context.Context, ev domain.CheckoutCompleted) error {
	subject := "Thanks for staying with us"
	body := fmt.Sprintf("Hi %s, your checkout is complete. We hope to see you again.", ev.GuestName)
	if err := s.mailer.Send(ctx, ev.GuestEmail, subject, body); err != nil {
		s.log.Error("checkout mail failed", "booking_id", ev.BookingID, "err", err)
	}
	return nil
}
