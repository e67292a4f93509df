package main

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/application"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/infrastructure/catalog"
	notifkafka "github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/infrastructure/kafka"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/infrastructure/mail"
	notifpg "github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/infrastructure/postgres"
	"github.com/ishiiii10/Hotel-Management-System-sub001/internal/notification/scheduler"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/config"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/idempotency"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/logging"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/shutdown"
	"github.com/ishiiii10/Hotel-Management-System-sub001/pkg/tracing"
)

func main() {
	log := logging.New("notification-service")

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.LoadNotification()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "notification-service", cfg.OTLPEndpoint, log)
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

	repo := notifpg.NewReminderRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema init failed", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	idem := idempotency.NewStore(rdb, cfg.DedupTTL)

	mailer := mail.NewLogMailer(log)
	hotels := catalog.NewClient(cfg.CatalogURL, 5*time.Second)

	svc := application.NewService(log, repo, mailer, cfg.ReminderLead)
	consumer := notifkafka.NewConsumer(log, []string{cfg.KafkaAddr}, cfg.Topics, cfg.GroupID, svc, idem)

	sched := scheduler.New(log, repo, hotels, mailer, cfg.SchedulerPeriod)

	go func() {
		if err := consumer.Run(ctx); err != nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler stopped", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("notification-service shutdown")
}
