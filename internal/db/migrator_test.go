package db_test

import (
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govlink/govlink/internal/config"
	"github.com/govlink/govlink/internal/db"
)

func testConfig() *config.Config {
	return &config.Config{
		Database: config.Database{
			Name:   "govlink",
			Port:   "5432",
			Host:   commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "localhost"},
			User:   commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "admin"},
			Secret: commoncfg.SourceRef{Source: commoncfg.EmbeddedSourceValue, Value: "password"},
			Migrator: config.Migrator{
				Schema: "migrations/schema",
				Data:   "migrations/data",
			},
		},
	}
}

func TestMigrator(t *testing.T) {
	m, err := db.NewMigrator(testConfig())
	require.NoError(t, err)

	t.Run("Should reject unknown migration type on latest", func(t *testing.T) {
		err := m.MigrateToLatest(t.Context(), db.Migration{Type: "tenant"})
		assert.ErrorIs(t, err, db.ErrUnsupportedMigration)
	})

	t.Run("Should reject unknown migration type on version", func(t *testing.T) {
		err := m.MigrateTo(t.Context(), db.Migration{Type: "", Downgrade: true}, 1)
		assert.ErrorIs(t, err, db.ErrUnsupportedMigration)
	})
}

func TestQuoteSchema(t *testing.T) {
	assert.Equal(t, `"public"`, db.QuoteSchema(db.DefaultSchema))
}
