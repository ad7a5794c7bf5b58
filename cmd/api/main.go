package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/paypal"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	err = migrate.MaybeRun(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "migrations", err)

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	blobs, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	resolve := paypal.ConfigResolver(cfg.PayPal)
	paypalHTTP := &http.Client{Timeout: cfg.PayPal.RequestTimeout}
	tokens, err := paypal.NewTokenCache(paypal.TokenCacheParams{
		HTTPClient: paypalHTTP,
		Resolve:    resolve,
		Timeout:    cfg.PayPal.RequestTimeout,
		Logger:     logg,
		Metrics:    checkoutMetrics,
	})
	requireResource(ctx, logg, "paypal token cache", err)
	paypalClient, err := paypal.NewClient(paypal.ClientParams{
		HTTPClient: paypalHTTP,
		Tokens:     tokens,
		Resolve:    resolve,
		Timeout:    cfg.PayPal.RequestTimeout,
		Logger:     logg,
		Metrics:    checkoutMetrics,
	})
	requireResource(ctx, logg, "paypal client", err)

	productRepo := product.NewRepository(dbClient.DB())
	productService, err := product.NewService(productRepo, blobs, logg)
	requireResource(ctx, logg, "product service", err)

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Session.CartTTL)
	requireResource(ctx, logg, "cart store", err)
	cartService, err := cart.NewService(cartStore, productRepo)
	requireResource(ctx, logg, "cart service", err)

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orderRepo)
	requireResource(ctx, logg, "order service", err)

	snapshots, err := checkout.NewRedisSnapshotStore(redisClient, cfg.Checkout.SnapshotTTL)
	requireResource(ctx, logg, "checkout snapshots", err)
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Carts:        cartStore,
		Provider:     paypalClient,
		Orders:       orderRepo,
		Snapshots:    snapshots,
		SnapshotCart: cfg.Checkout.SnapshotCart,
		Logger:       logg,
		Metrics:      checkoutMetrics,
	})
	requireResource(ctx, logg, "checkout service", err)

	sessionManager, err := session.NewManager(redisClient, cfg.Session)
	requireResource(ctx, logg, "session manager", err)
	authService, err := auth.NewService(auth.ServiceParams{
		Admins:         auth.NewAdminRepository(dbClient.DB()),
		SessionManager: sessionManager,
		App:            cfg.App,
		Session:        cfg.Session,
		Password:       cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	router := routes.NewRouter(routes.Dependencies{
		Config: cfg,
		Logger: logg,
		Ready: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"gcs":      blobs,
		},
		RateLimiter: redisClient,
		Gatherer:    registry,
		Auth:        authService,
		Carts:       cartService,
		Checkout:    checkoutService,
		Products:    productService,
		Orders:      orderService,
		Media:       blobs,
		PayPal:      resolve,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"sandbox":  cfg.PayPal.UseSandbox(),
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
