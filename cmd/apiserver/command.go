package apiserver

import (
	"context"
	"log/slog"

	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/daemon"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
	"github.com/govlink/govlink/utils/cmd"
)

// Run serves the execution, account and cost API until ctx is done, then
// drains in-flight requests before releasing the database and queue.
func Run(ctx context.Context, cfg *config.Config) error {
	log.Debug(ctx, "Starting the API server", slog.String("address", cfg.HTTP.Address))

	err := otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
	if err != nil {
		return oops.In("apiserver").Wrapf(err, "failed to initialise telemetry")
	}

	err = metrics.Register(prometheus.DefaultRegisterer)
	if err != nil {
		return oops.In("apiserver").Wrapf(err, "failed to register metrics")
	}

	cmd.StartStatusServer(ctx, cfg)

	server, err := daemon.NewGovlinkServer(ctx, cfg)
	if err != nil {
		return oops.In("apiserver").Wrapf(err, "failed to build the server")
	}

	err = server.Start(ctx)
	if err != nil {
		return oops.In("apiserver").Wrapf(err, "failed to start the server")
	}

	<-ctx.Done()

	err = server.Close(context.WithoutCancel(ctx))
	if err != nil {
		return oops.In("apiserver").Wrapf(err, "failed to close the server")
	}

	return nil
}

func Cmd(buildInfo string) *cobra.Command {
	return &cobra.Command{
		Use:   "api-server",
		Short: "govlink API Server",
		Long: "govlink API Server accepts account creation and join requests, reports execution status " +
			"and serves inventory and cost queries.",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			return Run(c.Context(), cfg)
		},
	}
}
