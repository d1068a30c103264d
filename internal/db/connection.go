package db

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db/dialect"
	"github.com/govlink/govlink/internal/db/dsn"
	"github.com/govlink/govlink/internal/errs"
	"github.com/govlink/govlink/internal/log"
)

var (
	ErrStartingDBCon            = errors.New("failed to open database connection")
	ErrDBResolver               = errors.New("failed to register read replicas")
	ErrLoadingDsnFromDBConfig   = errors.New("failed to build dsn from database config")
	ErrLoadingReplicaDialectors = errors.New("failed to build replica dialectors")
	ErrConfigurePool            = errors.New("failed to configure connection pool")
)

// StartDBConnection opens the primary inventory and workflow database. When
// replicas are configured, read-only queries such as account listings are
// spread over them at random; writes and transactions stay on the primary.
func StartDBConnection(ctx context.Context, conf config.Database, replicas []config.Database) (*gorm.DB, error) {
	primary, err := dialectorFor(conf)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(primary, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, errs.Wrap(ErrStartingDBCon, err)
	}

	err = applyPool(db, conf.Pool)
	if err != nil {
		return nil, err
	}

	db = db.WithContext(ctx)

	if len(replicas) == 0 {
		return db, nil
	}

	readers := make([]gorm.Dialector, 0, len(replicas))

	for _, r := range replicas {
		d, err := dialectorFor(r)
		if err != nil {
			return nil, errs.Wrap(ErrLoadingReplicaDialectors, err)
		}

		readers = append(readers, d)
	}

	err = db.Use(dbresolver.Register(dbresolver.Config{
		Sources:  []gorm.Dialector{primary},
		Replicas: readers,
		Policy:   dbresolver.RandomPolicy{},
	}))
	if err != nil {
		return nil, errs.Wrap(ErrDBResolver, err)
	}

	log.Info(ctx, "Database read replicas registered", slog.Int("replicas", len(readers)))

	return db, nil
}

func dialectorFor(conf config.Database) (gorm.Dialector, error) {
	d, err := dsn.FromDBConfig(conf)
	if err != nil {
		return nil, errs.Wrap(ErrLoadingDsnFromDBConfig, err)
	}

	return dialect.NewFrom(d), nil
}

func applyPool(db *gorm.DB, pool config.DatabasePool) error {
	if pool.MaxOpenConns == 0 && pool.MaxIdleConns == 0 {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errs.Wrap(ErrConfigurePool, err)
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}

	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}

	return nil
}
