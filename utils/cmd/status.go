package cmd

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/health"
	"github.com/openkcm/common-sdk/pkg/status"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db/dsn"
	"github.com/govlink/govlink/internal/log"
)

const (
	readinessTimeout = 5 * time.Second
	// postgresDriver is registered by the pgx stdlib package the gorm driver imports.
	postgresDriver = "pgx"
)

// StartStatusServer serves the liveness and readiness probes in the
// background. Readiness pings the inventory database; a process whose status
// server dies asks itself to terminate.
func StartStatusServer(ctx context.Context, cfg *config.Config) {
	liveness := status.WithLiveness(health.NewHandler(
		health.NewChecker(health.WithDisabledAutostart()),
	))

	readiness := status.WithReadiness(health.NewHandler(
		health.NewChecker(readinessOptions(ctx, cfg)...),
	))

	go func() {
		err := status.Start(ctx, &cfg.BaseConfig, liveness, readiness)
		if err != nil {
			log.Error(ctx, "Status server stopped", err)

			_ = syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
		}
	}()
}

func readinessOptions(ctx context.Context, cfg *config.Config) []health.Option {
	opts := []health.Option{
		health.WithDisabledAutostart(),
		health.WithTimeout(readinessTimeout),
		health.WithStatusListener(func(ctx context.Context, state health.State) {
			log.Info(ctx, "Readiness changed", slog.String("status", string(state.Status)))
		}),
	}

	conn, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		log.Error(ctx, "Readiness runs without a database check", err)
		return opts
	}

	return append(opts, health.WithDatabaseChecker(postgresDriver, conn))
}
