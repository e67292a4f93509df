package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/domain"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/config"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/idempotency"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

// errMalformed marks payloads that redelivery cannot fix.
var errMalformed = errors.New("malformed payload")

// Consumer subscribes to the whole booking event stream and routes by topic.
// Unlike billing, a reminder bookkeeping failure here must not drop the
// message. Group offsets are high watermarks, so skipping a failed message
// and committing any later one would mark it consumed forever; instead the
// consumer retries in place with a bounded backoff and, if the failure
// persists, surrenders its dedup claim and stops at the last committed
// offset. Malformed payloads are the exception; retrying those would loop
// forever, so they are logged and committed away.
type Consumer struct {
	log     *slog.Logger
	reader  *kafka.Reader
	svc     *application.Service
	idem    *idempotency.Store
	topics  config.Topics
	tracer  trace.Tracer
	retries int
	backoff time.Duration
}

func NewConsumer(log *slog.Logger, brokers []string, topics config.Topics, group string, svc *application.Service, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: group,
		GroupTopics: []string{
			topics.BookingCreated,
			topics.BookingConfirmed,
			topics.BookingCancelled,
			topics.BookingCheckedIn,
			topics.CheckoutCompleted,
		},
	})
	return &Consumer{
		log:     log,
		reader:  r,
		svc:     svc,
		idem:    idem,
		topics:  topics,
		tracer:  otel.Tracer("notification-consumer"),
		retries: 5,
		backoff: 2 * time.Second,
	}
}

func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return err
		}

		key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
		fresh, err := c.idem.Acquire(ctx, key)
		if err != nil {
			// fetching on would eventually commit a later offset over this
			// message; stop and resume from the last committed offset instead
			return fmt.Errorf("dedup check: %w", err)
		}
		if !fresh {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeBookingEvent")
		err = c.handleWithRetry(msgCtx, msg)
		span.End()

		if err != nil {
			if errors.Is(err, errMalformed) {
				c.log.Error("malformed event dropped", "topic", msg.Topic, "err", err)
				_ = c.reader.CommitMessages(ctx, msg)
				continue
			}
			c.log.Error("event handling failed, stopping at last committed offset", "topic", msg.Topic, "offset", msg.Offset, "err", err)
			_ = c.idem.Release(ctx, key)
			return fmt.Errorf("handle %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		_ = c.reader.CommitMessages(ctx, msg)
	}
}

// handleWithRetry retries transient failures without advancing the reader.
// Malformed payloads are returned immediately; retrying cannot fix them.
func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message) error {
	var err error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying event", "topic", msg.Topic, "offset", msg.Offset, "attempt", attempt, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff):
			}
		}
		err = c.handle(ctx, msg)
		if err == nil || errors.Is(err, errMalformed) {
			return err
		}
	}
	return err
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case c.topics.BookingCreated, c.topics.BookingConfirmed:
		var ev domain.BookingConfirmed
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		checkIn, err := time.Parse("2006-01-02", ev.CheckIn)
		if err != nil {
			return fmt.Errorf("%w: bad check_in %q", errMalformed, ev.CheckIn)
		}
		return c.svc.HandleConfirmed(ctx, ev, checkIn)
	case c.topics.BookingCancelled:
		var ev domain.BookingCancelled
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return c.svc.HandleCancelled(ctx, ev)
	case c.topics.BookingCheckedIn:
		var ev domain.BookingCheckedIn
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return c.svc.HandleCheckedIn(ctx, ev)
	case c.topics.CheckoutCompleted:
		var ev domain.CheckoutCompleted
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			return fmt.Errorf("%w: %v", errMalformed, err)
		}
		return c.svc.HandleCheckoutCompleted(ctx, ev)
	default:
		c.log.Warn("message on unexpected topic dropped", "topic", msg.Topic)
		return nil
	}
}
