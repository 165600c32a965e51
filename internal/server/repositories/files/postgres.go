// Package files stores FileRecords in Postgres. Records are append-only:
// there is no update or delete.
package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts rec and fills in the server-assigned id and timestamp.
// A second record for the same storage handle yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.FileRecord) (*models.FileRecord, error) {
	query := `
		INSERT INTO files (owner_id, storage_handle, filename, mime_type, size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		rec.OwnerID, rec.StorageHandle, rec.Filename, rec.MimeType, rec.Size).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: storage handle %s", common.ErrConflict, rec.StorageHandle)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// ListByOwner yields ownerID's records newest first, ties broken by
// insertion order. Each range over the sequence runs a fresh query, so the
// sequence can be consumed any number of times. A query or scan error is
// yielded once and ends the iteration.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) iter.Seq2[*models.FileRecord, error] {
	query := `
		SELECT id, owner_id, storage_handle, filename, mime_type, size, created_at
		FROM files
		WHERE owner_id = $1
		ORDER BY created_at DESC, seq DESC
	`

	return func(yield func(*models.FileRecord, error) bool) {
		rows, err := r.db.QueryContext(ctx, query, ownerID)
		if err != nil {
			yield(nil, fmt.Errorf("failed to select files: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			rec := &models.FileRecord{}
			if err := rows.Scan(&rec.ID, &rec.OwnerID, &rec.StorageHandle, &rec.Filename, &rec.MimeType, &rec.Size, &rec.CreatedAt); err != nil {
				yield(nil, fmt.Errorf("scan file: %w", err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Authorize returns the record addressed by handleOrID (a storage handle or
// a record id) only if ownerID owns it. A missing record and a foreign record
// both yield common.ErrAccessDenied.
func (r *PostgresRepository) Authorize(ctx context.Context, ownerID, handleOrID string) (*models.FileRecord, error) {
	query := `
		SELECT id, owner_id, storage_handle, filename, mime_type, size, created_at
		FROM files
		WHERE owner_id = $1 AND (storage_handle = $2 OR id::text = $2)
		LIMIT 1
	`

	rec := &models.FileRecord{}
	err := r.db.QueryRowContext(ctx, query, ownerID, handleOrID).
		Scan(&rec.ID, &rec.OwnerID, &rec.StorageHandle, &rec.Filename, &rec.MimeType, &rec.Size, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAccessDenied
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// ExistsByHandle reports whether ownerID has registered storageHandle.
// Other owners' handles are invisible.
func (r *PostgresRepository) ExistsByHandle(ctx context.Context, ownerID, storageHandle string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM files WHERE storage_handle = $1 AND owner_id = $2)`,
		storageHandle, ownerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}
