package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cryptonite-hq/cryptonite-backend/api/routes"
	"github.com/cryptonite-hq/cryptonite-backend/internal/cart"
	"github.com/cryptonite-hq/cryptonite-backend/internal/catalog"
	"github.com/cryptonite-hq/cryptonite-backend/internal/hosting"
	"github.com/cryptonite-hq/cryptonite-backend/internal/invoices"
	"github.com/cryptonite-hq/cryptonite-backend/internal/orders"
	"github.com/cryptonite-hq/cryptonite-backend/internal/payments"
	"github.com/cryptonite-hq/cryptonite-backend/internal/pricing"
	"github.com/cryptonite-hq/cryptonite-backend/internal/rentals"
	"github.com/cryptonite-hq/cryptonite-backend/internal/users"
	stripewebhook "github.com/cryptonite-hq/cryptonite-backend/internal/webhooks/stripe"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/config"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/db"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/migrate"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/redis"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/stripe"
)

const (
	webhookGuardTTL = 24 * time.Hour
	shutdownGrace   = 15 * time.Second
)

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe client", err)
		os.Exit(1)
	}

	fees, err := pricing.NewFees(cfg.Hosting)
	if err != nil {
		logg.Error(context.Background(), "failed to parse hosting fee schedule", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	cartRepo := cart.NewRepository(gdb)
	hostingRepo := hosting.NewRepository(gdb)
	orderRepo := orders.NewRepository(gdb)
	rentalRepo := rentals.NewRepository(gdb)
	invoiceRepo := invoices.NewRepository(gdb)
	userRepo := users.NewRepository(gdb)

	catalogService, err := catalog.NewService(catalog.ServiceParams{Repo: catalogRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Repo:     cartRepo,
		Products: catalogRepo,
		Bundles:  catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	hostingService, err := hosting.NewService(hosting.ServiceParams{
		Repo: hostingRepo,
		Cart: cartRepo,
		Fees: fees,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create hosting service", err)
		os.Exit(1)
	}
	paymentsService, err := payments.NewService(payments.ServiceParams{
		Cart:    cartRepo,
		Hosting: hostingRepo,
		Users:   userRepo,
		Stripe:  stripeClient,
		Fees:    fees,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.ServiceParams{Repo: orderRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	rentalsService, err := rentals.NewService(rentals.ServiceParams{Repo: rentalRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create rentals service", err)
		os.Exit(1)
	}
	invoicesService, err := invoices.NewService(invoices.ServiceParams{Repo: invoiceRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoices service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		CartRepo:          cartRepo,
		OrderRepo:         orderRepo,
		RentalRepo:        rentalRepo,
		HostingRepo:       hostingRepo,
		InvoiceRepo:       invoiceRepo,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}
	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookGuardTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:             cfg,
			Logger:             logg,
			DB:                 dbClient,
			Redis:              redisClient,
			Metrics:            registry,
			Catalog:            catalogService,
			Cart:               cartService,
			Payments:           paymentsService,
			Hosting:            hostingService,
			Orders:             ordersService,
			Rentals:            rentalsService,
			Invoices:           invoicesService,
			StripeClient:       stripeClient,
			StripeWebhook:      webhookService,
			StripeWebhookGuard: webhookGuard,
		}),
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "forced shutdown after drain timeout", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}
