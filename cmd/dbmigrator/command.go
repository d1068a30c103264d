package dbmigrator

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db"
	"github.com/govlink/govlink/internal/log"
	"github.com/govlink/govlink/utils/cmd"
)

const (
	defaultType = "schema"
	typeOptions = "data or schema"
)

type Flags struct {
	Version  int64
	Rollback bool
	Type     string
}

// Run applies the migrations selected by flags. A zero version means latest.
func Run(ctx context.Context, m db.Migrator, flags Flags) error {
	req := db.Migration{
		Downgrade: flags.Rollback,
		Type:      db.MigrationType(flags.Type),
	}

	log.Info(ctx, "Running migrations",
		slog.String("type", flags.Type),
		slog.Bool("rollback", flags.Rollback),
		slog.Int64("version", flags.Version),
	)

	var err error
	if flags.Version != 0 {
		err = m.MigrateTo(ctx, req, flags.Version)
	} else {
		err = m.MigrateToLatest(ctx, req)
	}

	if err != nil {
		return oops.In("main").Wrapf(err, "running %s migrations", flags.Type)
	}

	return nil
}

func Cmd(buildInfo string) *cobra.Command {
	var flags Flags

	command := &cobra.Command{
		Use:   "db-migrate",
		Short: "govlink database migrations",
		Long:  "Applies or rolls back the goose schema and data migrations of the inventory and execution store.",
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := cmd.Setup(buildInfo)
			if err != nil {
				return err
			}

			return migrate(c.Context(), cfg, flags)
		},
	}

	command.Flags().Int64Var(&flags.Version, "version", 0, "run migration until targeted version")
	command.Flags().BoolVarP(&flags.Rollback, "rollback", "r", false, "run down migrations (rollback)")
	command.Flags().StringVar(&flags.Type, "type", defaultType, "migration type ("+typeOptions+")")

	return command
}

func migrate(ctx context.Context, cfg *config.Config, flags Flags) error {
	m, err := db.NewMigrator(cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "creating migrator")
	}

	return Run(ctx, m, flags)
}
