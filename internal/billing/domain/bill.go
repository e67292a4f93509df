package domain

import (
	"errors"
	"time"
)

type BillStatus string

const (
	BillGenerated BillStatus = "GENERATED"
	BillPaid      BillStatus = "PAID"
)

var (
	ErrBillNotFound    = errors.New("bill not found")
	ErrBillAlreadyPaid = errors.New("bill already paid")
)

// Bill is this service's projection of a confirmed booking. BookingID is the
// natural key: at most one bill ever exists per booking, which is what makes
// duplicate event delivery harmless.
type Bill struct {
	BookingID   string
	BillNumber  string
	AmountCents int64
	Status      BillStatus
	CreatedAt   time.Time
	PaidAt      *time.Time
}

func NewBill(bookingID, bookingCode string, amountCents int64) Bill {
	return Bill{
		BookingID:   bookingID,
		BillNumber:  "BILL-" + bookingCode,
		AmountCents: amountCents,
		Status:      BillGenerated,
		CreatedAt:   time.Now().UTC(),
	}
}
