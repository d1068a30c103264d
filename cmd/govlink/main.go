package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"

	"github.com/govlink/govlink/cmd/apiserver"
	"github.com/govlink/govlink/cmd/bridgecli"
	"github.com/govlink/govlink/cmd/dbmigrator"
	"github.com/govlink/govlink/cmd/taskscheduler"
	"github.com/govlink/govlink/cmd/taskworker"
)

// BuildInfo will be set by the build system
var BuildInfo = "{}"

// drain is the pause between a long running command returning and the
// process exiting, so workers finishing a step can flush their writes.
type drain struct {
	skip    bool
	seconds int64
	message string
}

func (d *drain) wait(w io.Writer) {
	if d.skip || d.seconds <= 0 {
		return
	}

	_, _ = fmt.Fprintf(w, d.message+"\n", d.seconds)
	time.Sleep(time.Duration(d.seconds) * time.Second)
}

func versionCmd(d *drain, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the govlink build information",
		RunE: func(*cobra.Command, []string) error {
			d.skip = true

			value, err := utils.ExtractFromComplexValue(BuildInfo)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(out, value)

			return err
		},
	}
}

func rootCmd(d *drain) *cobra.Command {
	root := &cobra.Command{
		Use:   "govlink",
		Short: "govlink - GovCloud account provisioning",
		Long: "govlink creates GovCloud accounts through the commercial partition, joins them to the " +
			"GovCloud organization and records them in the sandbox inventory.",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.Int64Var(&d.seconds, "graceful-shutdown", 1, "graceful shutdown seconds")
	flags.StringVar(&d.message, "graceful-shutdown-message", "Graceful shutdown in %d seconds",
		"graceful shutdown message")

	root.AddCommand(
		versionCmd(d, os.Stdout),
		apiserver.Cmd(BuildInfo),
		taskscheduler.Cmd(BuildInfo),
		taskworker.Cmd(BuildInfo),
		dbmigrator.Cmd(BuildInfo),
		bridgecli.Cmd(BuildInfo),
	)

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := &drain{}

	err := rootCmd(d).ExecuteContext(ctx)
	if err != nil {
		slogctx.Error(ctx, "govlink command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	d.wait(os.Stderr)
}
