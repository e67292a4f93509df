package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/domain"
)

type Service struct {
	log  *slog.Logger
	repo BillRepository
	now  func() time.Time
}

func NewService(log *slog.Logger, repo BillRepository) *Service {
	return &Service{
		log:  log,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// GenerateFromConfirmation is idempotent under redelivery: the bill keyed by
// booking id either gets created once or the event is a no-op.
func (s *Service) GenerateFromConfirmation(ctx context.Context, ev domain.BookingConfirmed) error {
	bill := domain.NewBill(ev.BookingID, ev.BookingCode, ev.AmountCents)
	created, err := s.repo.Create(ctx, bill)
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	if !created {
		s.log.Info("bill already exists, duplicate delivery skipped", "booking_id", ev.BookingID)
		return nil
	}
	s.log.Info("bill generated", "booking_id", ev.BookingID, "bill_number", bill.BillNumber, "amount_cents", bill.AmountCents)
	return nil
}

func (s *Service) GetByBookingID(ctx context.Context, bookingID string) (domain.Bill, error) {
	return s.repo.GetByBookingID(ctx, bookingID)
}

// MarkPaid is the administrative GENERATED -> PAID action on the bill
// lifecycle.
func (s *Service) MarkPaid(ctx context.Context, bookingID string) error {
	if err := s.repo.MarkPaid(ctx, bookingID, s.now()); err != nil {
		return err
	}
	s.log.Info("bill paid", "booking_id", bookingID)
	return nil
}
