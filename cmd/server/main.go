package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"datareplicator/internal/generation/events"
	"datareplicator/internal/generation/handler"
	"datareplicator/internal/generation/metrics"
	"datareplicator/internal/generation/ports"
	"datareplicator/internal/generation/service"
	jobstore "datareplicator/internal/generation/store/jobs"
	"datareplicator/internal/generation/store/source"
	"datareplicator/internal/platform/config"
	"datareplicator/internal/platform/httpserver"
	"datareplicator/internal/platform/logger"
	platformredis "datareplicator/internal/platform/redis"
)

// main wires dependencies and keeps the server lifecycle small. Generation
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	jobs, cleanup, err := buildJobStore(ctx, cfg)
	if err != nil {
		log.Error("job store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.EventTopic)
	if err != nil {
		log.Error("kafka publisher setup failed", "error", err)
		os.Exit(1)
	}
	if publisher != nil {
		defer publisher.Close()
	}

	provider := source.NewMemory()

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithDomainTimeout(cfg.DomainTimeout),
	}
	if publisher != nil {
		opts = append(opts, service.WithEventPublisher(publisher))
	}
	svc := service.New(jobs, provider, provider, opts...)

	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting datareplicator", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// buildJobStore picks the persistence backend from configuration: PostgreSQL
// when a URL is set (with an optional Redis read cache for terminal results),
// otherwise in-process memory.
func buildJobStore(ctx context.Context, cfg config.Server) (ports.JobStore, func(), error) {
	if cfg.PostgresURL == "" {
		return jobstore.NewMemory(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	pg := jobstore.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	redisClient, err := platformredis.New(cfg.Redis())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if redisClient == nil {
		return pg, func() { _ = db.Close() }, nil
	}

	cached := jobstore.NewRedisCache(pg, redisClient.Client, 24*time.Hour)
	cleanup := func() {
		_ = redisClient.Close()
		_ = db.Close()
	}
	return cached, cleanup, nil
}
