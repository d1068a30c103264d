package taskworker

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/govlink/govlink/internal/app"
	"github.com/govlink/govlink/internal/async"
	"github.com/govlink/govlink/internal/async/tasks"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/internal/metrics"
	"github.com/govlink/govlink/utils/cmd"
)

// Handlers returns the task handlers the configured components can serve.
// Workflow tasks need the engine, cost reports and link reconciliation need the bridge.
func Handlers(cfg *config.Config, components *app.Components, enqueuer tasks.Enqueuer) []async.TaskHandler {
	var handlers []async.TaskHandler

	if components.Engine != nil {
		handlers = append(handlers,
			tasks.NewWorkflowAdvancer(components.Engine, enqueuer, &cfg.Workflow),
			tasks.NewWorkflowTimeoutProcessor(components.Engine),
		)
	}

	if components.Costs != nil {
		handlers = append(handlers, tasks.NewCostReportProcessor(components.Costs, &cfg.Costs))
	}

	if components.Bridge != nil {
		handlers = append(handlers, tasks.NewLinkReconciler(components.Bridge, components.Accounts))
	}

	return handlers
}

// Run processes queued tasks until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	err := metrics.Register(prometheus.DefaultRegisterer)
	if err != nil {
		return oops.In("main").Wrapf(err, "registering metrics")
	}

	cmd.StartStatusServer(ctx, cfg)

	components, err := app.New(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "building components")
	}

	defer func() {
		err := components.Close(context.WithoutCancel(ctx))
		if err != nil {
			log.Error(ctx, "Failed to release components", err)
		}
	}()

	worker, err := async.New(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to create the worker")
	}

	worker.RegisterTasks(ctx, Handlers(cfg, components, worker))

	errCh := make(chan error, 1)

	go func() {
		errCh <- worker.RunWorker(ctx)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return oops.In("main").Wrapf(err, "failed to start the worker")
		}
	case <-ctx.Done():
	}

	err = worker.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		return oops.In("main").Wrapf(err, "%s", async.ErrClientShutdown.Error())
	}

	log.Info(ctx, "shutting down worker")

	return nil
}

func Cmd(buildInfo string) *cobra.Command {
	command := &cobra.Command{
		Use:   "task-worker",
		Short: "govlink Task Worker",
		Long:  "govlink Task Worker - advances workflow executions and runs the periodic cost and linkage jobs.",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			return Run(c.Context(), cfg)
		},
	}

	return command
}
