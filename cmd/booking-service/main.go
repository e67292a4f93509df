package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/domain"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/infrastructure/holds"
	bookinghttp "github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/infrastructure/http"
	bookingpg "github.com/ishiiii10/Hotel-Management-System-sub001/internal/booking/infrastructure/postgres"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/config"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/logging"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/outbox"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/shutdown"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

func main() {
	log := logging.New("booking-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadBooking()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "booking-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := bookingpg.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaAddr),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
	}
	defer writer.Close()

	routes := map[string]string{
		domain.EventBookingConfirmed:  cfg.Topics.BookingConfirmed,
		domain.EventBookingCancelled:  cfg.Topics.BookingCancelled,
		domain.EventBookingCheckedIn:  cfg.Topics.BookingCheckedIn,
		domain.EventCheckoutCompleted: cfg.Topics.CheckoutCompleted,
	}
	dispatch := outbox.NewDispatcher(log, writer, routes)
	store := bookingpg.NewOutboxStore(log, pool)
	relay := outbox.NewRelay(log, store, dispatch, "booking-service-relay")

	holdStore := holds.NewClient(log, cfg.HoldStoreURL, cfg.HoldTimeout)
	svc := application.NewService(log, repo, holdStore, cfg.HoldTimeout)
	handler := bookinghttp.NewHandler(log, svc)

	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("booking-service shutdown complete")
}
