package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

type Service struct {
	log         *slog.Logger
	repo        BookingRepository
	holds       HoldStore
	holdTimeout time.Duration
	now         func() time.Time
}

func NewService(log *slog.Logger, repo BookingRepository, holds HoldStore, holdTimeout time.Duration) *Service {
	return &Service{
		log:         log,
		repo:        repo,
		holds:       holds,
		holdTimeout: holdTimeout,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingInput struct {
	HotelID     string
	RoomID      string
	UserID      string
	HoldID      string
	CheckIn     time.Time
	CheckOut    time.Time
	AmountCents int64
	GuestName   string
	GuestEmail  string
	Guests      []domain.BookingGuest
}

// Create runs the hold-then-confirm protocol: consume the hold, persist the
// booking as CONFIRMED together with its guests and the BookingConfirmed
// outbox row, and release the hold again if that commit fails. Publication
// happens after commit via the outbox relay, so a broker outage never fails
// a booking that committed.
func (s *Service) Create(ctx context.Context, in CreateBookingInput, headers map[string]string, traceparent string) (domain.Booking, error) {
	if err := domain.ValidateStay(in.CheckIn, in.CheckOut, s.now()); err != nil {
		return domain.Booking{}, err
	}

	holdCtx, cancel := context.WithTimeout(ctx, s.holdTimeout)
	defer cancel()
	if err := s.holds.Consume(holdCtx, in.HoldID); err != nil {
		// nothing persisted yet, nothing to compensate
		return domain.Booking{}, err
	}

	b := domain.NewBooking(in.HotelID, in.RoomID, in.UserID, in.HoldID, in.CheckIn, in.CheckOut, in.AmountCents, in.GuestName, in.GuestEmail)
	payload, err := json.Marshal(domain.NewBookingConfirmedEvent(b))
	if err != nil {
		s.releaseHold(ctx, in.HoldID)
		return domain.Booking{}, fmt.Errorf("marshal confirmed event: %w", err)
	}

	if err := s.repo.SaveWithOutbox(ctx, b, in.Guests, domain.EventBookingConfirmed, payload, headers, traceparent); err != nil {
		// the one compensating action: give the inventory slot back
		s.releaseHold(ctx, in.HoldID)
		return domain.Booking{}, fmt.Errorf("persist booking: %w", err)
	}

	s.log.Info("booking confirmed", "booking_id", b.ID, "code", b.Code, "hold_id", b.HoldID)
	return b, nil
}

func (s *Service) Cancel(ctx context.Context, id, reason string, headers map[string]string, traceparent string) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransitionTo(domain.StatusCancelled) {
		return domain.Booking{}, &domain.InvalidTransitionError{BookingID: id, Current: b.Status, Requested: domain.StatusCancelled}
	}

	now := s.now()
	payload, err := json.Marshal(domain.BookingCancelledEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		HotelID:     b.HotelID,
		Reason:      reason,
		CancelledAt: now,
		GuestName:   b.GuestName,
		GuestEmail:  b.GuestEmail,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("marshal cancelled event: %w", err)
	}

	fields := TransitionFields{CancelReason: &reason, CancelledAt: &now}
	allowed := []domain.Status{domain.StatusCreated, domain.StatusConfirmed}
	if err := s.repo.TransitionWithOutbox(ctx, id, allowed, domain.StatusCancelled, fields, domain.EventBookingCancelled, payload, headers, traceparent); err != nil {
		return domain.Booking{}, err
	}

	// idempotent on the collaborator side, so releasing an already-consumed
	// hold is harmless
	s.releaseHold(ctx, b.HoldID)

	b.Status = domain.StatusCancelled
	b.CancelReason = reason
	b.CancelledAt = &now
	s.log.Info("booking cancelled", "booking_id", id, "reason", reason)
	return b, nil
}

func (s *Service) CheckIn(ctx context.Context, id string, headers map[string]string, traceparent string) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransitionTo(domain.StatusCheckedIn) {
		return domain.Booking{}, &domain.InvalidTransitionError{BookingID: id, Current: b.Status, Requested: domain.StatusCheckedIn}
	}

	payload, err := json.Marshal(domain.BookingCheckedInEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		HotelID:    b.HotelID,
		RoomID:     b.RoomID,
		CheckIn:    b.CheckIn.Format(domain.DateLayout),
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("marshal checked-in event: %w", err)
	}

	allowed := []domain.Status{domain.StatusConfirmed}
	if err := s.repo.TransitionWithOutbox(ctx, id, allowed, domain.StatusCheckedIn, TransitionFields{}, domain.EventBookingCheckedIn, payload, headers, traceparent); err != nil {
		return domain.Booking{}, err
	}

	b.Status = domain.StatusCheckedIn
	s.log.Info("booking checked in", "booking_id", id)
	return b, nil
}

type CheckOutInput struct {
	Rating       *int
	Feedback     string
	LateCheckout bool
}

func (s *Service) CheckOut(ctx context.Context, id string, in CheckOutInput, headers map[string]string, traceparent string) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransitionTo(domain.StatusCheckedOut) {
		return domain.Booking{}, &domain.InvalidTransitionError{BookingID: id, Current: b.Status, Requested: domain.StatusCheckedOut}
	}

	payload, err := json.Marshal(domain.CheckoutCompletedEvent{
		BookingID:    b.ID,
		UserID:       b.UserID,
		HotelID:      b.HotelID,
		CheckOut:     b.CheckOut.Format(domain.DateLayout),
		Rating:       in.Rating,
		Feedback:     in.Feedback,
		LateCheckout: in.LateCheckout,
		GuestName:    b.GuestName,
		GuestEmail:   b.GuestEmail,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("marshal checkout event: %w", err)
	}

	fields := TransitionFields{Rating: in.Rating, LateCheckout: &in.LateCheckout}
	if in.Feedback != "" {
		fields.Feedback = &in.Feedback
	}
	allowed := []domain.Status{domain.StatusCheckedIn}
	if err := s.repo.TransitionWithOutbox(ctx, id, allowed, domain.StatusCheckedOut, fields, domain.EventCheckoutCompleted, payload, headers, traceparent); err != nil {
		return domain.Booking{}, err
	}

	b.Status = domain.StatusCheckedOut
	s.log.Info("booking checked out", "booking_id", id, "late", in.LateCheckout)
	return b, nil
}

// MarkNoShow is an administrative transition; no domain event is published
// for it.
func (s *Service) MarkNoShow(ctx context.Context, id string) (domain.Booking, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Status.CanTransitionTo(domain.StatusNoShow) {
		return domain.Booking{}, &domain.InvalidTransitionError{BookingID: id, Current: b.Status, Requested: domain.StatusNoShow}
	}

	allowed := []domain.Status{domain.StatusConfirmed}
	if err := s.repo.TransitionWithOutbox(ctx, id, allowed, domain.StatusNoShow, TransitionFields{}, "", nil, nil, ""); err != nil {
		return domain.Booking{}, err
	}

	b.Status = domain.StatusNoShow
	s.log.Info("booking marked no-show", "booking_id", id)
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Guests(ctx context.Context, bookingID string) ([]domain.BookingGuest, error) {
	return s.repo.Guests(ctx, bookingID)
}

func (s *Service) releaseHold(ctx context.Context, holdID string) {
	if err := s.holds.Release(context.WithoutCancel(ctx), holdID); err != nil {
		s.log.Error("hold release failed", "hold_id", holdID, "err", err)
	}
}
