package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voxindia/quickcart-backend/api/routes"
	cartsvc "github.com/voxindia/quickcart-backend/internal/cart"
	checkoutsvc "github.com/voxindia/quickcart-backend/internal/checkout"
	"github.com/voxindia/quickcart-backend/internal/mail"
	cashfreewebhook "github.com/voxindia/quickcart-backend/internal/webhooks/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/cashfree"
	"github.com/voxindia/quickcart-backend/pkg/config"
	"github.com/voxindia/quickcart-backend/pkg/logger"
	"github.com/voxindia/quickcart-backend/pkg/metrics"
	"github.com/voxindia/quickcart-backend/pkg/razorpay"
	"github.com/voxindia/quickcart-backend/pkg/redis"
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

	razorpayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	cashfreeClient, err := cashfree.NewClient(context.Background(), cfg.Cashfree, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cashfree client", err)
		os.Exit(1)
	}

	notifier, err := mail.NewMailer(cfg.Mail, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(cartsvc.NewRedisSlot(redisClient, cfg.Checkout.SessionCartTTL), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	checkoutService, err := checkoutsvc.NewService(
		cartService,
		razorpayClient,
		cashfreeClient,
		notifier,
		checkoutMetrics,
		logg,
		cfg.Checkout.Currency,
		cfg.Checkout.SessionCartTTL,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := cashfreewebhook.NewService(checkoutService, cashfreeClient.WebhookSecret())
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := cashfreewebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookTTL, "cashfree")
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency guard", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			CartService:     cartService,
			CheckoutService: checkoutService,
			WebhookService:  webhookService,
			WebhookGuard:    webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
