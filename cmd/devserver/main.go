package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/kresfloral/kres-console/internal/devbackend"
	"github.com/kresfloral/kres-console/pkg/config"
	"github.com/kresfloral/kres-console/pkg/env"
	"github.com/kresfloral/kres-console/pkg/logger"
	"go.uber.org/multierr"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run holds the whole lifecycle so deferred cleanup survives failure paths;
// main only translates the error into an exit code.
func run() error {
	logg := logger.New(logger.Options{ServiceName: "devserver"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		return err
	}

	logg = logger.New(logger.Options{
		ServiceName: "devserver",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	db, err := devbackend.Open(context.Background(), cfg.DevDB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		return err
	}
	defer func() {
		var closeErr error
		if sqlDB, err := db.DB(); err != nil {
			closeErr = multierr.Append(closeErr, err)
		} else {
			closeErr = multierr.Append(closeErr, sqlDB.Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing database", closeErr)
		}
	}()

	addr := ":" + env.Get("PORT", cfg.DevDB.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting development backend")

	server := &http.Server{
		Addr:    addr,
		Handler: devbackend.NewServer(db, logg).Handler(),
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "development backend stopped unexpectedly", err)
		return err
	}
	return nil
}
