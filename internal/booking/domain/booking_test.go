package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusGraphIsForwardOnly(t *testing.T) {
	all := []Status{StatusCreated, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow}

	allowed := map[Status]map[Status]bool{
		StatusCreated:   {StatusConfirmed: true, StatusCancelled: true},
		StatusConfirmed: {StatusCheckedIn: true, StatusCancelled: true, StatusNoShow: true},
		StatusCheckedIn: {StatusCheckedOut: true},
	}

	for _, from := range all {
		for _, to := range all {
			got := from.CanTransitionTo(to)
			want := allowed[from][to]
			assert.Equal(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []Status{StatusCreated, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled, StatusNoShow}
	for _, terminal := range []Status{StatusCheckedOut, StatusCancelled, StatusNoShow} {
		for _, to := range all {
			assert.False(t, terminal.CanTransitionTo(to), "%s must not leave terminal state (tried %s)", terminal, to)
		}
	}
}

func TestNewBooking(t *testing.T) {
	checkIn := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	b := NewBooking("h1", "r1", "u1", "H1", checkIn, checkOut, 25000, "Ada Lovelace", "ada@example.com")

	require.NotEmpty(t, b.ID)
	assert.Regexp(t, `^BK-[0-9A-F]{32}$`, b.Code)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "H1", b.HoldID)
	assert.Nil(t, b.CancelledAt)
	assert.False(t, b.CreatedAt.IsZero())

	b2 := NewBooking("h1", "r1", "u1", "H2", checkIn, checkOut, 25000, "Ada Lovelace", "ada@example.com")
	assert.NotEqual(t, b.ID, b2.ID)
	assert.NotEqual(t, b.Code, b2.Code)
}

func TestValidateStay(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	day := func(d int) time.Time { return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC) }

	assert.NoError(t, ValidateStay(day(21), day(23), now))
	// check-in today is allowed
	assert.NoError(t, ValidateStay(day(20), day(21), now))

	assert.ErrorIs(t, ValidateStay(day(23), day(21), now), ErrCheckOutNotAfterCheckIn)
	assert.ErrorIs(t, ValidateStay(day(21), day(21), now), ErrCheckOutNotAfterCheckIn)
	assert.ErrorIs(t, ValidateStay(day(19), day(21), now), ErrCheckInInPast)
}
