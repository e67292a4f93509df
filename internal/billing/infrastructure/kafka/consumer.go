package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/domain"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/idempotency"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

// Consumer projects BookingConfirmed events into bills. Failures are logged
// and the message is committed anyway: the broker gives at-least-once, the
// bill's natural key absorbs duplicates, and failed business logic is not
// re-driven here (no dead-letter queue, a deliberate scope decision).
type Consumer struct {
	log    *slog.Logger
	reader *kafka.Reader
	svc    *application.Service
	idem   *idempotency.Store
	tracer trace.Tracer
}

func NewConsumer(log *slog.Logger, brokers []string, topic, group string, svc *application.Service, idem *idempotency.Store) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
	return &Consumer{
		log:    log,
		reader: r,
		svc:    svc,
		idem:   idem,
		tracer: otel.Tracer("billing-consumer"),
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
			c.log.Error("dedup check failed", "err", err)
			continue
		}
		if !fresh {
			c.log.Info("duplicate message skipped", "key", key)
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
		msgCtx, span := c.tracer.Start(msgCtx, "ConsumeBookingConfirmed")

		var ev domain.BookingConfirmed
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.log.Error("unmarshal failed, event dropped", "err", err)
			span.End()
			_ = c.reader.CommitMessages(ctx, msg)
			continue
		}

		if err := c.svc.GenerateFromConfirmation(msgCtx, ev); err != nil {
			c.log.Error("bill generation failed, event dropped", "booking_id", ev.BookingID, "err", err)
		}
		span.End()
		_ = c.reader.CommitMessages(ctx, msg)
	}
}
