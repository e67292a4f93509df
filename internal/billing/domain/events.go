package domain

// BookingConfirmed is this consumer's view of the upstream payload. Fields it
// does not know about are ignored on unmarshal, which keeps the contract
// forward compatible.
type BookingConfirmed struct {
	BookingID   string `json:"booking_id"`
	BookingCode string `json:"booking_code"`
	UserID      string `json:"user_id"`
	HotelID     string `json:"hotel_id"`
	AmountCents int64  `json:"amount_cents"`
}
