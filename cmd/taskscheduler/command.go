package taskscheduler

import (
	"context"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/govlink/govlink/internal/async"
	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/utils/cmd"
)

// Run enqueues the configured periodic tasks until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	scheduler, err := async.New(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to create the scheduler")
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- scheduler.RunScheduler()
	}()

	select {
	case err = <-errCh:
		if err != nil {
			return oops.In("main").Wrapf(err, "failed to start the scheduler job")
		}
	case <-ctx.Done():
	}

	err = scheduler.Shutdown(context.WithoutCancel(ctx))
	if err != nil {
		return oops.In("main").Wrapf(err, "failed to shutdown the scheduler")
	}

	log.Info(ctx, "shutting down scheduler")

	return nil
}

func Cmd(buildInfo string) *cobra.Command {
	command := &cobra.Command{
		Use:   "task-scheduler",
		Short: "govlink Task Scheduler",
		Long:  "govlink Task Scheduler - enqueues the timeout sweep, cost report and linkage reconcile jobs on their cron specs.",
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
