package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func testRoutes() map[string]string {
	return map[string]string{
		"BookingConfirmed": "booking-confirmed",
		"BookingCancelled": "booking-cancelled",
	}
}

func confirmedRow() Event {
	return Event{
		ID:          1,
		AggregateID: "b1",
		Type:        "BookingConfirmed",
		Payload:     []byte(`{"booking_id":"b1"}`),
		Headers:     map[string]string{"source": "booking-service"},
		Traceparent: "00-abc-def-01",
	}
}

func headerValue(h []kafka.Header, key string) (string, bool) {
	for _, hh := range h {
		if hh.Key == key {
			return string(hh.Value), true
		}
	}
	return "", false
}

func TestDispatchRoutesByEventType(t *testing.T) {
	producer := &fakeProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, testRoutes())

	require.NoError(t, d.Dispatch(context.Background(), confirmedRow()))
	require.Len(t, producer.msgs, 1)

	msg := producer.msgs[0]
	assert.Equal(t, "booking-confirmed", msg.Topic)
	assert.Equal(t, []byte("b1"), msg.Key, "booking id keys the partition")
	assert.JSONEq(t, `{"booking_id":"b1"}`, string(msg.Value))

	typ, ok := headerValue(msg.Headers, "event_type")
	require.True(t, ok)
	assert.Equal(t, "BookingConfirmed", typ)
	tp, ok := headerValue(msg.Headers, "traceparent")
	require.True(t, ok)
	assert.Equal(t, "00-abc-def-01", tp)
	src, ok := headerValue(msg.Headers, "source")
	require.True(t, ok)
	assert.Equal(t, "booking-service", src)
}

func TestDispatchUnroutedTypeIsPermanent(t *testing.T) {
	producer := &fakeProducer{}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, testRoutes())

	row := confirmedRow()
	row.Type = "SomethingElse"
	err := d.Dispatch(context.Background(), row)

	require.ErrorIs(t, err, ErrPermanent)
	assert.Empty(t, producer.msgs)
}

func TestDispatchProducerErrorPropagates(t *testing.T) {
	producer := &fakeProducer{err: errors.New("broker down")}
	d := NewDispatcher(slog.New(slog.NewTextHandler(io.Discard, nil)), producer, testRoutes())

	err := d.Dispatch(context.Background(), confirmedRow())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}
