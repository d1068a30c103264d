package testutils

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/govlink/govlink/internal/model"
	"github.com/govlink/govlink/internal/repo"
	"github.com/govlink/govlink/internal/repo/sql"
)

// Models are the tables migrated into every test database.
var Models = []any{
	&model.Execution{},
	&model.ExecutionEvent{},
	&model.Account{},
	&model.CostReport{},
}

// NewTestDB opens an isolated in-memory sqlite database with all models migrated.
// A single connection is used so transactions observe their own writes.
func NewTestDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	sqlDB.SetMaxOpenConns(1)

	tb.Cleanup(func() {
		_ = sqlDB.Close()
	})

	err = db.AutoMigrate(Models...)
	require.NoError(tb, err)

	return db
}

// NewTestRepo returns a repository backed by NewTestDB.
func NewTestRepo(tb testing.TB) (*sql.ResourceRepository, *gorm.DB) {
	tb.Helper()

	db := NewTestDB(tb)

	return sql.NewRepository(db), db
}

func CreateTestEntities(ctx context.Context, tb testing.TB, r repo.Repo, entities ...repo.Resource) {
	tb.Helper()

	for _, e := range entities {
		err := r.Create(ctx, e)
		assert.NoError(tb, err)
	}
}
