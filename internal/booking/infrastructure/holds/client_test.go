package holds

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
)

func newHoldServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConsumeStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		reason string
	}{
		{http.StatusConflict, domain.HoldAlreadyConsumed},
		{http.StatusGone, domain.HoldExpired},
		{http.StatusNotFound, domain.HoldNotFound},
	}

	for _, tc := range cases {
		srv := newHoldServer(t, tc.status)
		c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Second)

		err := c.Consume(context.Background(), "H1")

		var holdErr *domain.HoldConsumptionError
		require.ErrorAs(t, err, &holdErr, "status %d", tc.status)
		assert.Equal(t, tc.reason, holdErr.Reason)
		assert.Equal(t, "H1", holdErr.HoldID)
	}
}

func TestConsumeSuccess(t *testing.T) {
	srv := newHoldServer(t, http.StatusOK)
	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Second)

	assert.NoError(t, c.Consume(context.Background(), "H1"))
}

func TestConsumeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)
	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err := c.Consume(ctx, "H1")

	var holdErr *domain.HoldConsumptionError
	require.ErrorAs(t, err, &holdErr)
	assert.Equal(t, domain.HoldTimeout, holdErr.Reason)
}

func TestReleaseIsIdempotent(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusGone, http.StatusConflict} {
		srv := newHoldServer(t, status)
		c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Second)
		assert.NoError(t, c.Release(context.Background(), "H1"), "status %d", status)
	}
}

func TestReleaseServerError(t *testing.T) {
	srv := newHoldServer(t, http.StatusInternalServerError)
	c := NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), srv.URL, time.Second)
	assert.Error(t, c.Release(context.Background(), "H1"))
}
