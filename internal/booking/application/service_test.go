package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

type fakeRepo struct {
	bookings map[string]domain.Booking
	guests   map[string][]domain.BookingGuest

	savedEvents      []string
	savedPayloads    [][]byte
	transitionEvents []string
	saveErr          error
	transitionErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		bookings: map[string]domain.Booking{},
		guests:   map[string][]domain.BookingGuest{},
	}
}

func (f *fakeRepo) SaveWithOutbox(_ context.Context, b domain.Booking, guests []domain.BookingGuest, eventType string, payload []byte, _ map[string]string, _ string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.bookings[b.ID] = b
	f.guests[b.ID] = guests
	f.savedEvents = append(f.savedEvents, eventType)
	f.savedPayloads = append(f.savedPayloads, payload)
	return nil
}

func (f *fakeRepo) TransitionWithOutbox(_ context.Context, id string, allowed []domain.Status, to domain.Status, fields TransitionFields, eventType string, payload []byte, _ map[string]string, _ string) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	permitted := false
	for _, s := range allowed {
		if b.Status == s {
			permitted = true
		}
	}
	if !permitted {
		return &domain.InvalidTransitionError{BookingID: id, Current: b.Status, Requested: to}
	}
	b.Status = to
	if fields.CancelReason != nil {
		b.CancelReason = *fields.CancelReason
	}
	if fields.CancelledAt != nil {
		b.CancelledAt = fields.CancelledAt
	}
	f.bookings[id] = b
	if eventType != "" {
		f.transitionEvents = append(f.transitionEvents, eventType)
		f.savedPayloads = append(f.savedPayloads, payload)
	}
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return domain.Booking{}, domain.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeRepo) Guests(_ context.Context, id string) ([]domain.BookingGuest, error) {
	return f.guests[id], nil
}

type fakeHolds struct {
	consumeErr error
	consumed   []string
	released   []string
}

func (f *fakeHolds) Consume(_ context.Context, holdID string) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.consumed = append(f.consumed, holdID)
	return nil
}

func (f *fakeHolds) Release(_ context.Context, holdID string) error {
	f.released = append(f.released, holdID)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		HotelID:     "h1",
		RoomID:      "r1",
		UserID:      "u1",
		HoldID:      "H1",
		CheckIn:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:    time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		AmountCents: 25000,
		GuestName:   "Ada Lovelace",
		GuestEmail:  "ada@example.com",
		Guests:      []domain.BookingGuest{{FullName: "Ada Lovelace", Age: 36, IDType: "passport", IDNumber: "X123"}},
	}
}

func newTestService(repo *fakeRepo, holds *fakeHolds) *Service {
	s := NewService(testLogger(), repo, holds, time.Second)
	s.now = func() time.Time { return time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestCreateConfirmsBookingAndQueuesEvent(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, []string{"H1"}, holds.consumed)
	assert.Empty(t, holds.released)
	require.Equal(t, []string{domain.EventBookingConfirmed}, repo.savedEvents)
	require.Len(t, repo.guests[b.ID], 1)

	var ev domain.BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(repo.savedPayloads[0], &ev))
	assert.Equal(t, b.ID, ev.BookingID)
	assert.Equal(t, int64(25000), ev.AmountCents)
	assert.Equal(t, "2025-06-01", ev.CheckIn)
	assert.Equal(t, "ada@example.com", ev.GuestEmail)
}

func TestCreateFailsWhenHoldConsumptionFails(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{consumeErr: &domain.HoldConsumptionError{HoldID: "H2", Reason: domain.HoldAlreadyConsumed}}
	svc := newTestService(repo, holds)

	_, err := svc.Create(context.Background(), validInput(), nil, "")

	var holdErr *domain.HoldConsumptionError
	require.ErrorAs(t, err, &holdErr)
	assert.Equal(t, domain.HoldAlreadyConsumed, holdErr.Reason)
	// nothing persisted, no event queued, no compensation needed
	assert.Empty(t, repo.bookings)
	assert.Empty(t, repo.savedEvents)
	assert.Empty(t, holds.released)
}

func TestCreateReleasesHoldWhenCommitFails(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("pg down")
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	_, err := svc.Create(context.Background(), validInput(), nil, "")
	require.Error(t, err)

	assert.Equal(t, []string{"H1"}, holds.consumed)
	assert.Equal(t, []string{"H1"}, holds.released)
	assert.Empty(t, repo.bookings)
}

func TestCreateRejectsBadStayDates(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	in := validInput()
	in.CheckIn, in.CheckOut = in.CheckOut, in.CheckIn
	_, err := svc.Create(context.Background(), in, nil, "")
	assert.ErrorIs(t, err, domain.ErrCheckOutNotAfterCheckIn)

	in = validInput()
	in.CheckIn = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Create(context.Background(), in, nil, "")
	assert.ErrorIs(t, err, domain.ErrCheckInInPast)

	// validation failures never touch the hold store
	assert.Empty(t, holds.consumed)
}

func TestCancelConfirmedBooking(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), b.ID, "guest request", nil, "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, "guest request", cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, []string{domain.EventBookingCancelled}, repo.transitionEvents)
	assert.Contains(t, holds.released, "H1")
}

func TestCancelFromCheckedInIsRejected(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)
	_, err = svc.CheckIn(context.Background(), b.ID, nil, "")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), b.ID, "too late", nil, "")

	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, domain.StatusCheckedIn, transErr.Current)
	assert.Equal(t, domain.StatusCancelled, transErr.Requested)
	assert.Empty(t, repo.transitionEvents[1:], "no cancel event may be queued")
}

func TestCheckInThenCheckOut(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)

	checkedIn, err := svc.CheckIn(context.Background(), b.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedIn, checkedIn.Status)

	rating := 5
	out, err := svc.CheckOut(context.Background(), b.ID, CheckOutInput{Rating: &rating, Feedback: "great stay", LateCheckout: true}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCheckedOut, out.Status)

	assert.Equal(t, []string{domain.EventBookingCheckedIn, domain.EventCheckoutCompleted}, repo.transitionEvents)

	var ev domain.CheckoutCompletedEvent
	require.NoError(t, json.Unmarshal(repo.savedPayloads[len(repo.savedPayloads)-1], &ev))
	require.NotNil(t, ev.Rating)
	assert.Equal(t, 5, *ev.Rating)
	assert.True(t, ev.LateCheckout)
}

func TestCheckOutBeforeCheckInIsRejected(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)

	_, err = svc.CheckOut(context.Background(), b.ID, CheckOutInput{}, nil, "")

	var transErr *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, domain.StatusConfirmed, transErr.Current)
}

func TestMarkNoShowPublishesNoEvent(t *testing.T) {
	repo := newFakeRepo()
	holds := &fakeHolds{}
	svc := newTestService(repo, holds)

	b, err := svc.Create(context.Background(), validInput(), nil, "")
	require.NoError(t, err)

	ns, err := svc.MarkNoShow(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNoShow, ns.Status)
	assert.Empty(t, repo.transitionEvents)
}
