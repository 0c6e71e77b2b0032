package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/adoptly/adoptly-backend/api/routes"
	"github.com/adoptly/adoptly-backend/internal/adoptions"
	"github.com/adoptly/adoptly-backend/internal/auth"
	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/internal/users"
	"github.com/adoptly/adoptly-backend/internal/wishlist"
	"github.com/adoptly/adoptly-backend/pkg/config"
	"github.com/adoptly/adoptly-backend/pkg/db"
	"github.com/adoptly/adoptly-backend/pkg/logger"
	"github.com/adoptly/adoptly-backend/pkg/metrics"
	"github.com/adoptly/adoptly-backend/pkg/migrate"
	pkgrazorpay "github.com/adoptly/adoptly-backend/pkg/razorpay"
	pkgredis "github.com/adoptly/adoptly-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis only backs rate limiting; the API serves without it.
	var redisClient *pkgredis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	gateway, err := pkgrazorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap razorpay", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	adoptionMetrics := metrics.NewAdoptionMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	petRepo := pets.NewRepository(dbClient.DB())
	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	orderRepo := adoptions.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	petService, err := pets.NewService(petRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pets service", err)
		os.Exit(1)
	}

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		PetRepo:      petRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create wishlist service", err)
		os.Exit(1)
	}

	adoptionService, err := adoptions.NewService(adoptions.ServiceParams{
		Orders:  orderRepo,
		Pets:    petRepo,
		Gateway: gateway,
		Metrics: adoptionMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create adoptions service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.RouterParams{
		Config:          cfg,
		Logger:          logg,
		DBPinger:        dbClient,
		RedisClient:     redisClient,
		AuthService:     authService,
		PetService:      petService,
		WishlistService: wishlistService,
		AdoptionService: adoptionService,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		closeErr := server.Shutdown(shutdownCtx)
		closeErr = multierr.Append(closeErr, dbClient.Close())
		if redisClient != nil {
			closeErr = multierr.Append(closeErr, redisClient.Close())
		}
		if closeErr != nil {
			logg.Error(ctx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(ctx, "shutdown complete")
	}
}
