package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/db"
	"github.com/danmelak/shopcart/internal/notifications"
	"github.com/danmelak/shopcart/internal/observability"
	"github.com/danmelak/shopcart/internal/queue/worker"
	"github.com/danmelak/shopcart/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	schemaCtx, cancelSchema := config.WithTimeout(10 * time.Second)

	err = db.EnsureSchema(schemaCtx, pool)
	cancelSchema()

	if err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.NewRegistry())

	jobsRepo := postgres.NewJobsRepo(pool, prom)

	notifier := notifications.NewProtectedNotifier(notifications.NewLogNotifier(), notifications.ProtectedNotifierConfig{})

	host, _ := os.Hostname()

	w := worker.New(worker.Config{
		PollInterval:  500 * time.Millisecond,
		WorkerID:      fmt.Sprintf("%s-%s", host, uuid.NewString()[:8]),
		Concurrency:   4,
		LockTTL:       60 * time.Second,
		ShutdownGrace: 10 * time.Second,
	}, jobsRepo, notifier, prom, log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("health server failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("worker starting", "health_port", cfg.Port, "env", cfg.Env)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	_ = healthSrv.Shutdown(shutdownCtx)

	log.Info("worker stopped")
}
