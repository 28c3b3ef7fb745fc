// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal service
// packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accounthandler "brgyconnect/internal/account/handler"
	"brgyconnect/internal/account/otp"
	accountservice "brgyconnect/internal/account/service"
	accountstore "brgyconnect/internal/account/store"
	directoryhandler "brgyconnect/internal/directory/handler"
	directoryservice "brgyconnect/internal/directory/service"
	directorystore "brgyconnect/internal/directory/store"
	notifhandler "brgyconnect/internal/notification/handler"
	notifservice "brgyconnect/internal/notification/service"
	notifstore "brgyconnect/internal/notification/store"
	"brgyconnect/internal/platform/config"
	"brgyconnect/internal/platform/httpserver"
	"brgyconnect/internal/platform/logger"
	"brgyconnect/internal/platform/metrics"
	"brgyconnect/internal/platform/middleware"
	"brgyconnect/internal/platform/postgres"
	platformredis "brgyconnect/internal/platform/redis"
	requesthandler "brgyconnect/internal/request/handler"
	requestservice "brgyconnect/internal/request/service"
	requeststore "brgyconnect/internal/request/store"
	"brgyconnect/internal/seed"
	"brgyconnect/internal/sms"
	"brgyconnect/internal/token"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		accounts  accountservice.Store
		requests  requestservice.Store
		notifRows notifservice.Store
		residents directoryservice.Store
	)
	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		accounts = accountstore.NewPostgres(db)
		requests = requeststore.NewPostgres(db)
		notifRows = notifstore.NewPostgres(db)
		residents = directorystore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		accounts = accountstore.NewMemory()
		requests = requeststore.NewMemory()
		notifRows = notifstore.NewMemory()
		residents = directorystore.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	// OTP store: redis when configured, in-memory otherwise.
	var otps otp.Store = otp.NewMemoryStore()
	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		otps = otp.NewRedisStore(redisClient.Client)
		log.Info("using redis OTP store")
	}

	// SMS gateway: Semaphore when an API key is present, log-only otherwise.
	var gateway sms.Gateway
	if cfg.SMS.APIKey != "" {
		gateway = sms.NewSemaphore(cfg.SMS.APIKey, cfg.SMS.SenderName,
			sms.WithTimeout(cfg.SMS.Timeout))
	} else {
		gateway = sms.NewLogGateway(log)
		log.Warn("SEMAPHORE_API_KEY not set, SMS messages will only be logged")
	}

	m := metrics.New()
	tokens := token.NewService(cfg.JWTSigningKey)

	notifier := notifservice.New(notifRows, gateway,
		notifservice.WithLogger(log),
		notifservice.WithMetrics(m),
	)
	accountSvc := accountservice.New(accounts, otps, notifier,
		accountservice.WithLogger(log),
		accountservice.WithTokenService(tokens),
		accountservice.WithCascade(requests, notifRows),
	)
	requestSvc := requestservice.New(requests, accounts, notifier,
		requestservice.WithLogger(log),
		requestservice.WithMetrics(m),
	)
	directorySvc := directoryservice.New(residents, accounts)

	if err := seed.Staff(ctx, accounts, log); err != nil {
		log.Error("staff seeding failed", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(middleware.Latency(m))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"pong"}`))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	accounthandler.New(accountSvc, log).Register(router)
	requesthandler.New(requestSvc, log).Register(router)
	notifhandler.New(notifier, log).Register(router)
	directoryhandler.New(directorySvc).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting brgyconnect", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Daily sweep for requests past the six-month limit. One pass runs
		// immediately so a long-stopped server catches up on start.
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			if n, err := requestSvc.ExpireStale(gctx); err != nil {
				log.Error("expiry sweep failed", "error", err)
			} else if n > 0 {
				log.Info("expired stale requests", "count", n)
			}
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
