package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/server/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFactories(t *testing.T) {
	db := newDB(t)

	var m RepositoryManager = NewPostgresRepositoryManager()

	assert.NotNil(t, m.Users(db))
	assert.NotNil(t, m.Files(db))
	assert.NotNil(t, m.Slots(db))
}

func TestRunMigrations(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	t.Run("success", func(t *testing.T) {
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			if dir != "." {
				return errors.New("unexpected dir")
			}
			return nil
		}
		require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t)))
	})

	t.Run("error", func(t *testing.T) {
		gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
			return errors.New("boom")
		}
		assert.EqualError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), newDB(t)), "boom")
	})
}

func TestEmbeddedSchema(t *testing.T) {
	b, err := fs.ReadFile(migrations.Migrations, "00001_init.sql")
	require.NoError(t, err)

	schema := string(b)
	for _, s := range []string{
		"storage_handle TEXT NOT NULL UNIQUE",
		"files_owner_created_idx",
		"created_at DESC, seq DESC",
		"CREATE TABLE IF NOT EXISTS upload_slots",
		"-- +goose Down",
	} {
		assert.Contains(t, schema, s)
	}
}
