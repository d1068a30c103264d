// Package dialect builds the gorm dialector govlink runs against.
package dialect

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewFrom returns a postgres dialector for a keyword/value dsn as built by
// package dsn. The simple protocol keeps pgx from caching plans, which would
// break after a migration changes a column type under a running worker.
func NewFrom(dsn string) gorm.Dialector {
	return postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	})
}
