package domain

import "time"

const ReminderTypeCheckIn = "CHECK_IN_REMINDER"

// ScheduledReminder is keyed by (BookingID, Type). Sent flips false->true
// exactly once; once Cancelled is set the reminder is never dispatched, no
// matter what Sent says or when ScheduledDate arrives.
type ScheduledReminder struct {
	BookingID     string
	Type          string
	ScheduledDate time.Time
	CheckInDate   time.Time
	HotelID       string
	GuestName     string
	GuestEmail    string
	Sent          bool
	Cancelled     bool
	SentAt        *time.Time
}

// NewCheckInReminder schedules the reminder at check-in minus the lead time,
// truncated to a calendar date for the daily due query.
func NewCheckInReminder(bookingID, hotelID, guestName, guestEmail string, checkIn time.Time, lead time.Duration) ScheduledReminder {
	return ScheduledReminder{
		BookingID:     bookingID,
		Type:          ReminderTypeCheckIn,
		ScheduledDate: checkIn.Add(-lead).Truncate(24 * time.Hour),
		CheckInDate:   checkIn,
		HotelID:       hotelID,
		GuestName:     guestName,
		GuestEmail:    guestEmail,
	}
}

// Hotel is the catalog collaborator's read model, used only for reminder
// content.
type Hotel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}
