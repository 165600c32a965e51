package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ    = `(?s)^\s*INSERT\s+INTO\s+files\s*\(owner_id,\s*storage_handle,\s*filename,\s*mime_type,\s*size\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id,\s*created_at\s*$`
	listQ      = `(?s)SELECT\s+id,.*FROM\s+files\s+WHERE\s+owner_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC,\s*seq\s+DESC`
	authorizeQ = `(?s)SELECT\s+id,.*FROM\s+files\s+WHERE\s+owner_id\s*=\s*\$1\s+AND\s+\(storage_handle\s*=\s*\$2\s+OR\s+id::text\s*=\s*\$2\)`
	existsQ    = `SELECT EXISTS \(SELECT 1 FROM files WHERE storage_handle = \$1 AND owner_id = \$2\)`
)

var recordCols = []string{"id", "owner_id", "storage_handle", "filename", "mime_type", "size", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQ).
		WithArgs("u1", "users/2026/03/01/h1", "memo.txt", "text/plain", int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rec-1", now))

	got, err := repo.Create(context.Background(), &models.FileRecord{
		OwnerID: "u1", StorageHandle: "users/2026/03/01/h1", Filename: "memo.txt", MimeType: "text/plain", Size: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "rec-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "u1", got.OwnerID)
}

func TestCreate_DuplicateHandle(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("u1", "h1", "a", "b", int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "files_storage_handle_key"})

	_, err := repo.Create(context.Background(), &models.FileRecord{OwnerID: "u1", StorageHandle: "h1", Filename: "a", MimeType: "b", Size: 1})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.FileRecord{OwnerID: "u1", StorageHandle: "h1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
	assert.NotErrorIs(t, err, common.ErrConflict)
}

func collect(t *testing.T, repo *PostgresRepository, owner string) ([]*models.FileRecord, error) {
	t.Helper()
	var out []*models.FileRecord
	for rec, err := range repo.ListByOwner(context.Background(), owner) {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func TestListByOwner_OrderedAndRestartable(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	t2 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	t1 := t2.Add(-time.Hour)

	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(recordCols).
			AddRow("r3", "u1", "h3", "c.pdf", "application/pdf", int64(3), t2).
			AddRow("r2", "u1", "h2", "b.txt", "text/plain", int64(2), t1).
			AddRow("r1", "u1", "h1", "b.txt", "text/plain", int64(2), t1)
	}
	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnRows(rows())
	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnRows(rows())

	first, err := collect(t, repo, "u1")
	require.NoError(t, err)
	second, err := collect(t, repo, "u1")
	require.NoError(t, err)

	require.Len(t, first, 3)
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{first[0].ID, first[1].ID, first[2].ID})
	assert.Equal(t, first, second)
}

func TestListByOwner_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WithArgs("nobody").WillReturnRows(sqlmock.NewRows(recordCols))

	got, err := collect(t, repo, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListByOwner_EarlyBreakClosesRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()
	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnRows(
		sqlmock.NewRows(recordCols).
			AddRow("r2", "u1", "h2", "b", "m", int64(1), now).
			AddRow("r1", "u1", "h1", "a", "m", int64(1), now).
			RowsWillBeClosed())

	for rec, err := range repo.ListByOwner(context.Background(), "u1") {
		require.NoError(t, err)
		assert.Equal(t, "r2", rec.ID)
		break
	}
}

func TestListByOwner_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(listQ).WillReturnError(errors.New("select failed"))

		_, err := collect(t, repo, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to select files")
	})

	t.Run("scan", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(listQ).WillReturnRows(
			sqlmock.NewRows(recordCols).AddRow("r1", "u1", "h1", "a", "m", "not-a-number", time.Now()))

		_, err := collect(t, repo, "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan file")
	})

	t.Run("rows", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(listQ).WillReturnRows(
			sqlmock.NewRows(recordCols).
				AddRow("r1", "u1", "h1", "a", "m", int64(1), time.Now()).
				RowError(0, errors.New("row broke")))

		_, err := collect(t, repo, "u1")
		assert.EqualError(t, err, "row broke")
	})
}

func TestAuthorize(t *testing.T) {
	now := time.Now().UTC()

	t.Run("owner by handle", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(authorizeQ).WithArgs("u1", "h1").
			WillReturnRows(sqlmock.NewRows(recordCols).AddRow("r1", "u1", "h1", "memo.txt", "text/plain", int64(18), now))

		rec, err := repo.Authorize(context.Background(), "u1", "h1")
		require.NoError(t, err)
		assert.Equal(t, "h1", rec.StorageHandle)
		assert.Equal(t, int64(18), rec.Size)
	})

	t.Run("foreign or missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(authorizeQ).WithArgs("u2", "h1").WillReturnError(sql.ErrNoRows)

		_, err := repo.Authorize(context.Background(), "u2", "h1")
		assert.ErrorIs(t, err, common.ErrAccessDenied)
	})

	t.Run("db error is not access denied", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(authorizeQ).WillReturnError(errors.New("conn reset"))

		_, err := repo.Authorize(context.Background(), "u1", "h1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrAccessDenied)
	})
}

func TestExistsByHandle(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQ).WithArgs("h1", "alice").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQ).WithArgs("h1", "bob").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(existsQ).WithArgs("h3", "alice").WillReturnError(errors.New("boom"))

	ok, err := repo.ExistsByHandle(context.Background(), "alice", "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsByHandle(context.Background(), "bob", "h1")
	require.NoError(t, err)
	assert.False(t, ok, "another owner's handle is not visible")

	_, err = repo.ExistsByHandle(context.Background(), "alice", "h3")
	assert.Error(t, err)
}
