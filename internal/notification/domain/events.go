package domain

// Consumer-side views of the upstream payloads. Unknown fields are ignored on
// unmarshal for forward compatibility.

type BookingConfirmed struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	HotelID    string `json:"hotel_id"`
	RoomID     string `json:"room_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type BookingCancelled struct {
	BookingID  string `json:"booking_id"`
	Reason     string `json:"reason"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type BookingCheckedIn struct {
	BookingID  string `json:"booking_id"`
	HotelID    string `json:"hotel_id"`
	RoomID     string `json:"room_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}

type CheckoutCompleted struct {
	BookingID  string `json:"booking_id"`
	HotelID    string `json:"hotel_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
}
