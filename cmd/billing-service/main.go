package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/application"
	billinghttp "github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/infrastructure/http"
	billingkafka "github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/infrastructure/kafka"
	billingpg "github.com/ishiiii10/Hotel-Management-System-sub001/internal/billing/infrastructure/postgres"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/config"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/idempotency"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/logging"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/shutdown"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

func main() {
	log := logging.New("billing-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadBilling()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "billing-service", cfg.OTLPEndpoint, log)
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

	repo := billingpg.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	idem := idempotency.NewStore(rdb, cfg.DedupTTL)

	svc := application.NewService(log, repo)
	consumer := billingkafka.NewConsumer(log, []string{cfg.KafkaAddr}, cfg.Topics.BookingConfirmed, cfg.GroupID, svc, idem)

	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	handler := billinghttp.NewHandler(log, svc)
	r := chi.NewRouter()
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

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
	log.Info("billing-service shutdown complete")
}
