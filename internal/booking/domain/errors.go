package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrCheckOutNotAfterCheckIn = errors.New("check-out must be after check-in")
	ErrCheckInInPast           = errors.New("check-in must not be in the past")
)

// Hold consumption failure reasons, as reported by the inventory collaborator.
const (
	HoldExpired         = "expired"
	HoldAlreadyConsumed = "already-consumed"
	HoldNotFound        = "not-found"
	HoldTimeout         = "timeout"
)

// HoldConsumptionError fails the whole create operation; nothing was
// persisted, so the caller must re-acquire a hold and retry.
type HoldConsumptionError struct {
	HoldID string
	Reason string
	Err    error
}

func (e *HoldConsumptionError) Error() string {
	return fmt.Sprintf("hold %s consumption failed: %s", e.HoldID, e.Reason)
}

func (e *HoldConsumptionError) Unwrap() error { return e.Err }

// InvalidTransitionError reports an operation attempted from a state that
// forbids it, including a lost compare-and-set race at commit time.
type InvalidTransitionError struct {
	BookingID string
	Current   Status
	Requested Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s: invalid transition %s -> %s", e.BookingID, e.Current, e.Requested)
}
