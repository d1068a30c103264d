package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db/dsn"
	"github.com/govlink/govlink/internal/errs"
)

type (
	MigrationType string
	migrateFunc   func(ctx context.Context, db *sql.DB, dir string) error
)

const (
	DataMigrationTable                 = "goose_db_data_version"
	SchemaMigrationTable               = "goose_db_schema_version"
	DefaultSchema                      = "public"
	SchemaMigration      MigrationType = "schema"
	DataMigration        MigrationType = "data"
)

var (
	ErrUnsupportedMigration = errors.New("unsupported migration")
	ErrOpenMigrationDB      = errors.New("failed to open migration connection")
)

type Migration struct {
	Downgrade bool
	Type      MigrationType
}

type Migrator interface {
	MigrateToLatest(ctx context.Context, migration Migration) error
	MigrateTo(ctx context.Context, migration Migration, version int64) error
}

type migrator struct {
	dsn string
	cfg config.Migrator
}

func NewMigrator(cfg *config.Config) (Migrator, error) {
	dsn, err := dsn.FromDBConfig(cfg.Database)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingDsnFromDBConfig, err)
	}

	return &migrator{
		dsn: dsn,
		cfg: cfg.Database.Migrator,
	}, nil
}

// MigrateToLatest applies every pending migration, or rolls back the newest
// one when migration.Downgrade is set.
func (m *migrator) MigrateToLatest(ctx context.Context, migration Migration) error {
	return m.run(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownContext(ctx, db, dir)
		}

		return goose.UpContext(ctx, db, dir)
	})
}

// MigrateTo moves the database to version, upwards or, with
// migration.Downgrade, downwards.
func (m *migrator) MigrateTo(ctx context.Context, migration Migration, version int64) error {
	return m.run(ctx, migration, func(ctx context.Context, db *sql.DB, dir string) error {
		if migration.Downgrade {
			return goose.DownToContext(ctx, db, dir, version)
		}

		return goose.UpToContext(ctx, db, dir, version)
	})
}

func (m *migrator) run(ctx context.Context, migration Migration, f migrateFunc) error {
	dir, table, err := m.target(migration)
	if err != nil {
		return err
	}

	dsn := fmt.Sprintf("%s search_path=%s", m.dsn, QuoteSchema(DefaultSchema))

	dbCon, err := goose.OpenDBWithDriver(string(goose.DialectPostgres), dsn)
	if err != nil {
		return errs.Wrap(ErrOpenMigrationDB, err)
	}
	defer dbCon.Close()

	goose.SetTableName(fmt.Sprintf("%s.%s", QuoteSchema(DefaultSchema), table))

	return f(ctx, dbCon, dir)
}

// target returns the migration directory and goose version table for the migration type.
func (m *migrator) target(migration Migration) (string, string, error) {
	switch migration.Type {
	case SchemaMigration:
		return m.cfg.Schema, SchemaMigrationTable, nil
	case DataMigration:
		return m.cfg.Data, DataMigrationTable, nil
	default:
		return "", "", errs.Wrapf(ErrUnsupportedMigration, string(migration.Type))
	}
}

func QuoteSchema(schema string) string {
	return fmt.Sprintf("\"%s\"", schema)
}
