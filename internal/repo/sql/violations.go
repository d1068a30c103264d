package sql

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationErrCode = "23505" // see https://www.postgresql.org/docs/14/errcodes-appendix.html

	// extended sqlite result codes, see https://www.sqlite.org/rescode.html
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

type codedError interface {
	Code() int
}

// IsUniqueConstraint reports whether err is a unique or primary key violation,
// either translated by gorm or raised by the postgres or sqlite driver.
func IsUniqueConstraint(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code == pgUniqueViolationErrCode
	}

	var coded codedError
	if errors.As(err, &coded) {
		return coded.Code() == sqliteConstraintPrimaryKey || coded.Code() == sqliteConstraintUnique
	}

	return false
}
