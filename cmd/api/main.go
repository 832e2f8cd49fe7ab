// Package main is the entry point for the Homestay API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/homestay/backend/internal/auth"
	"github.com/pkordes/homestay/backend/internal/blob"
	"github.com/pkordes/homestay/backend/internal/config"
	"github.com/pkordes/homestay/backend/internal/events"
	"github.com/pkordes/homestay/backend/internal/handler"
	"github.com/pkordes/homestay/backend/internal/middleware"
	"github.com/pkordes/homestay/backend/internal/obs"
	"github.com/pkordes/homestay/backend/internal/repo"
	"github.com/pkordes/homestay/backend/internal/service"
	"github.com/pkordes/homestay/backend/migrations"
	"github.com/pkordes/homestay/backend/spec"
)

const serviceName = "homestay-api"

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := obs.NewLogger(os.Stdout, cfg.AppEnv, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Tracing ----------------------------------------------------------
	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.AppEnv, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("tracer shutdown", "error", err)
		}
	}()

	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections immediately; Ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(ctx, sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		return err
	}
	logger.Info("migrations applied", "count", applied)

	// --- Redis ------------------------------------------------------------
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}

	// --- Object storage ---------------------------------------------------
	store, err := blob.NewMinioStore(blob.Options{
		Endpoint:  cfg.S3.Endpoint,
		UseSSL:    cfg.S3.UseSSL,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Bucket:    cfg.S3.Bucket,
		PublicURL: cfg.S3.PublicURL,
	}, logger)
	if err != nil {
		return err
	}

	// --- Events -----------------------------------------------------------
	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		return err
	}
	defer publisher.Close()
	logger.Info("event publisher ready", "backend", cfg.Events.Backend)

	// --- Identity ---------------------------------------------------------
	provider := auth.NewProvider(auth.ProviderConfig{
		Domain:       cfg.IdP.Domain,
		ClientID:     cfg.IdP.ClientID,
		ClientSecret: cfg.IdP.ClientSecret,
		CallbackURL:  cfg.IdP.CallbackURL,
	})
	var idp service.IdentityManager
	if cfg.IdP.Domain != "" && cfg.IdP.LandlordRoleID != "" {
		idp = auth.NewManagement(ctx, auth.ManagementConfig{
			Domain:         cfg.IdP.Domain,
			ClientID:       cfg.IdP.ClientID,
			ClientSecret:   cfg.IdP.ClientSecret,
			LandlordRoleID: cfg.IdP.LandlordRoleID,
		})
	} else {
		logger.Warn("identity provider management disabled; landlord roles stay local")
	}
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.TTL)
	states := auth.NewRedisStateStore(rdb, 10*time.Minute)

	// --- Services ---------------------------------------------------------
	users := service.NewUserService(repo.NewUserRepo(pool), idp, logger)
	pictures := service.NewPictureService(repo.NewPictureRepo(pool), store, logger)
	listingRepo := repo.NewListingRepo(pool)
	landlords := service.NewLandlordService(listingRepo, pictures, users, logger)
	bookings := service.NewBookingService(repo.NewBookingRepo(pool), landlords, publisher, logger)
	tenants := service.NewTenantService(listingRepo, bookings, users)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	var logoutReturnTo string
	if len(cfg.CORSOrigins) > 0 {
		logoutReturnTo = cfg.CORSOrigins[0]
	}
	srvHandler := handler.NewServer(handler.Deps{
		Users:          users,
		Tenants:        tenants,
		Landlords:      landlords,
		Bookings:       bookings,
		IdP:            provider,
		Tokens:         tokens,
		States:         states,
		OpenAPI:        spec.OpenAPI,
		LogoutReturnTo: logoutReturnTo,
		Log:            logger,
	})
	r.Mount("/", srvHandler.Routes(handler.Middleware{
		Authenticate:  middleware.Authenticate(tokens, users, logger),
		AuthRateLimit: middleware.RateLimitByIP(ctx, cfg.AuthRateLimitRPS, max(1, int(cfg.AuthRateLimitRPS*2))),
	}))

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for picture uploads.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown: wait for a signal, then give in-flight requests
	// up to 15 seconds to complete.
	select {
	case err := <-serveErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newPublisher builds the event publisher selected by EVENTS_BACKEND.
func newPublisher(cfg config.Events) (events.Publisher, error) {
	switch cfg.Backend {
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.EventsAMQP:
		return events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return events.Noop{}, nil
	}
}
