package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kresfloral/kres-console/internal/dashboard"
	"github.com/kresfloral/kres-console/internal/gateway"
	"github.com/kresfloral/kres-console/internal/records"
	"github.com/kresfloral/kres-console/pkg/config"
	"github.com/kresfloral/kres-console/pkg/logger"
	"github.com/kresfloral/kres-console/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// The console binary performs a full sync against the configured backend and
// reports the dashboard snapshot. It doubles as a connectivity check for a
// fresh environment.
func main() {
	logg := logger.New(logger.Options{ServiceName: "console"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "console",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	client, err := gateway.NewClient(cfg.Backend, nil, logg,
		gateway.WithMetrics(metrics.NewGatewayMetrics(registry)))
	if err != nil {
		logg.Error(context.Background(), "failed to build gateway client", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "backend", cfg.Backend.BaseURL)
	store := records.NewStore(logg)

	products, err := client.ListProducts(ctx)
	if err != nil {
		logg.Error(ctx, "product sync failed", err)
		os.Exit(1)
	}
	store.Products.Load(ctx, products)

	summary := dashboard.Summarize(store, time.Now())
	ctx = logg.WithFields(ctx, map[string]any{
		"products":       summary.TotalProducts,
		"low_stock":      summary.LowStockCount,
		"critical_stock": summary.CriticalStockCount,
	})
	logg.Info(ctx, "sync complete")

	for _, product := range dashboard.LowStockAlerts(store) {
		alertCtx := logg.WithProductID(ctx, product.ID)
		logg.Warn(alertCtx, product.Name+" is "+product.Status().Label())
	}
}
