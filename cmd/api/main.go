package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmelak/shopcart/internal/auth"
	"github.com/danmelak/shopcart/internal/cache"
	"github.com/danmelak/shopcart/internal/config"
	"github.com/danmelak/shopcart/internal/db"
	httpx "github.com/danmelak/shopcart/internal/http"
	"github.com/danmelak/shopcart/internal/observability"
	"github.com/danmelak/shopcart/internal/queue/redisclient"
	"github.com/danmelak/shopcart/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is opt-in via OTLP_ENDPOINT
	tracing := cfg.OTLPEndpoint != ""

	if tracing {
		shutdown, err := observability.InitTracer(context.Background(), "shopcart-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			tracing = false
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
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

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("upload dir create failed", "dir", cfg.UploadDir, "err", err)
		os.Exit(1)
	}

	// redis backs the token revocation set; run open-loop without it
	redisCl := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
	redisUp := redisCl.Ping(pingCtx) == nil
	cancelPing()

	if !redisUp {
		log.Warn("redis unreachable, logout revocation disabled", "addr", cfg.RedisAddr)
	}

	defer func() { _ = redisCl.Close() }()

	// metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	signupRepo := postgres.NewSignupRepo(usersRepo, jobsRepo)
	cartsRepo := postgres.NewCartsRepo(pool, prom)
	productsRepo := postgres.NewProductsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	catalogCache := cache.New(10 * time.Second)

	ping := func() error {
		ctx, cancel := config.WithTimeout(1 * time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	deps := httpx.Deps{
		Users:      usersRepo,
		UserWriter: signupRepo,
		Carts:      cartsRepo,
		Products:   productsRepo,

		Verifier: jwtManager,
		Issuer:   jwtManager,

		Cache: catalogCache,
		Prom:  prom,

		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:           ping,
		Tracing:        tracing,
	}

	if redisUp {
		deps.Revoker = redisCl
		deps.RevokedSet = redisCl
	}

	router := httpx.NewRouter(log, deps, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
