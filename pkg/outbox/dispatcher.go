package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// ErrPermanent marks failures that retrying cannot fix; the relay parks the
// row as failed instead of re-queueing it.
var ErrPermanent = errors.New("permanent")

// Dispatcher turns locked outbox rows into Kafka messages. Each event type
// has its own topic; an event with no route is a permanent failure.
type Dispatcher struct {
	log      *slog.Logger
	producer Producer
	routes   map[string]string
}

func NewDispatcher(log *slog.Logger, producer Producer, routes map[string]string) *Dispatcher {
	return &Dispatcher{log: log, producer: producer, routes: routes}
}

func (d *Dispatcher) Dispatch(ctx context.Context, event Event) error {
	topic, ok := d.routes[event.Type]
	if !ok {
		return fmt.Errorf("%w: no topic route for event type %q", ErrPermanent, event.Type)
	}

	headers := make([]kafka.Header, 0, len(event.Headers)+2)
	for k, v := range event.Headers {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	headers = append(headers, kafka.Header{Key: "event_type", Value: []byte(event.Type)})
	if event.Traceparent != "" {
		headers = append(headers, kafka.Header{Key: "traceparent", Value: []byte(event.Traceparent)})
	}

	msg := kafka.Message{
		Topic:   topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}
	if err := d.producer.WriteMessages(ctx, msg); err != nil {
		d.log.Error("outbox dispatch failed", "event_id", event.ID, "topic", topic, "err", err)
		return err
	}
	d.log.Info("outbox dispatched", "event_id", event.ID, "type", event.Type, "topic", topic)
	return nil
}
