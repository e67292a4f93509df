package domain

import "time"

// Event type names. The outbox dispatcher routes each one to its topic.
const (
	EventBookingConfirmed  = "BookingConfirmed"
	EventBookingCancelled  = "BookingCancelled"
	EventBookingCheckedIn  = "BookingCheckedIn"
	EventCheckoutCompleted = "CheckoutCompleted"
)

const DateLayout = "2006-01-02"

// Events are immutable facts published after the local transition committed.
// Guest name/email are denormalized so downstream services never call back.

type BookingConfirmedEvent struct {
	BookingID   string `json:"booking_id"`
	BookingCode string `json:"booking_code"`
	UserID      string `json:"user_id"`
	HotelID     string `json:"hotel_id"`
	RoomID      string `json:"room_id"`
	CheckIn     string `json:"check_in"`
	CheckOut    string `json:"check_out"`
	AmountCents int64  `json:"amount_cents"`
	GuestName   string `json:"guest_name"`
	GuestEmail  string `json:"guest_email"`
}

type BookingCancelledEvent struct {
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	HotelID     string    `json:"hotel_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
	GuestName   string    `json:"guest_name"`
	GuestEmail  string    `json:"guest_email"`
}

type BookingCheckedInEvent struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	HotelID    string `json:"hotel_id"`
	RoomID     string `json:"room_id"`
	CheckIn    string `json:"check_in"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type CheckoutCompletedEvent struct {
	BookingID    string `json:"booking_id"`
	UserID       string `json:"user_id"`
	HotelID      string `json:"hotel_id"`
	CheckOut     string `json:"check_out"`
	Rating       *int   `json:"rating,omitempty"`
	Feedback     string `json:"feedback,omitempty"`
	LateCheckout bool   `json:"late_checkout"`
	GuestName    string `json:"guest_name"`
	GuestEmail   string `json:"guest_email"`
}

func NewBookingConfirmedEvent(b Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:   b.ID,
		BookingCode: b.Code,
		UserID:      b.UserID,
		HotelID:     b.HotelID,
		RoomID:      b.RoomID,
		CheckIn:     b.CheckIn.Format(DateLayout),
		CheckOut:    b.CheckOut.Format(DateLayout),
		AmountCents: b.AmountCents,
		GuestName:   b.GuestName,
		GuestEmail:  b.GuestEmail,
	}
}
