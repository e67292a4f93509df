package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusCheckedIn  Status = "CHECKED_IN"
	StatusCheckedOut Status = "CHECKED_OUT"
	StatusCancelled  Status = "CANCELLED"
	StatusNoShow     Status = "NO_SHOW"
)

// transitions is the full forward-only graph. Terminal states have no entry.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCheckedOut},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Booking is the aggregate root. HoldID is set exactly once at creation and
// never reused; Status only moves forward along the transition graph.
type Booking struct {
	ID           string
	Code         string
	HotelID      string
	RoomID       string
	CheckIn      time.Time
	CheckOut     time.Time
	UserID       string
	HoldID       string
	AmountCents  int64
	GuestName    string
	GuestEmail   string
	Status       Status
	CancelReason string
	Rating       *int
	Feedback     string
	LateCheckout bool
	CreatedAt    time.Time
	CancelledAt  *time.Time
}

// BookingGuest rows live and die with their Booking.
type BookingGuest struct {
	FullName string
	Age      int
	IDType   string
	IDNumber string
}

func NewBooking(hotelID, roomID, userID, holdID string, checkIn, checkOut time.Time, amountCents int64, guestName, guestEmail string) Booking {
	id := uuid.NewString()
	return Booking{
		ID:          id,
		Code:        bookingCode(id),
		HotelID:     hotelID,
		RoomID:      roomID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		UserID:      userID,
		HoldID:      holdID,
		AmountCents: amountCents,
		GuestName:   guestName,
		GuestEmail:  guestEmail,
		Status:      StatusConfirmed,
		CreatedAt:   time.Now().UTC(),
	}
}

// bookingCode keeps the full 128 bits of the id: the code column is UNIQUE
// and a truncated code would make collisions a real failure mode at volume.
func bookingCode(id string) string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(id, "-", ""))
}

// ValidateStay enforces the creation-time date rules: check-out strictly
// after check-in, check-in not before today.
func ValidateStay(checkIn, checkOut time.Time, now time.Time) error {
	if !checkOut.After(checkIn) {
		return ErrCheckOutNotAfterCheckIn
	}
	today := now.UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		return ErrCheckInInPast
	}
	return nil
}
