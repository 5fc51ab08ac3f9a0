package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/loyalty-bridge/internal/api/http"
	"github.com/spec-kit/loyalty-bridge/internal/api/http/handlers"
	"github.com/spec-kit/loyalty-bridge/internal/commerce"
	"github.com/spec-kit/loyalty-bridge/internal/config"
	"github.com/spec-kit/loyalty-bridge/internal/loyalty"
	"github.com/spec-kit/loyalty-bridge/internal/mapper"
	"github.com/spec-kit/loyalty-bridge/internal/observability"
	"github.com/spec-kit/loyalty-bridge/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens := loyalty.NewTokenManager(cfg.Loyalty, metrics, logger)
	loyaltyClient := loyalty.NewClient(cfg.Loyalty, tokens, logger)
	couponService := loyalty.NewCouponService(cfg.Loyalty, tokens, logger)
	commerceClient := commerce.NewClient(cfg.Commerce, logger)

	orderMapper := mapper.NewOrderMapper(loyaltyClient, logger)
	returnMapper := mapper.NewReturnMapper(loyaltyClient, commerceClient, logger)

	if cfg.Scheduler.Enabled {
		sync := scheduler.New(cfg.Scheduler, scheduler.Dependencies{
			Commerce: commerceClient,
			Orders:   orderMapper,
			Returns:  returnMapper,
			Sender:   loyaltyClient,
			Tokens:   tokens,
			Metrics:  metrics,
			Logger:   logger,
		})
		sync.Start(ctx)
		defer sync.Stop()
	} else {
		logger.Info("sync scheduler disabled")
	}

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Scheduler.Enabled)
	couponsHandler := handlers.NewCouponsHandler(couponService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  healthHandler,
		Coupons: couponsHandler,
	})

	go startMetricsServer(cfg.Metrics.Addr, logger)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func startMetricsServer(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
