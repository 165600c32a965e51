// Package slots persists upload slots: one row per issued presigned PUT,
// consumed at most once by the registration that follows the upload.
package slots

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, slot *models.UploadSlot) error {
	query := `
		INSERT INTO upload_slots (storage_handle, owner_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, slot.StorageHandle, slot.OwnerID, slot.ExpiresAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: slot %s", common.ErrConflict, slot.StorageHandle)
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Consume marks the slot used. It succeeds only for the slot's owner, before
// expiry, and only once; every other case is common.ErrSlotExpired. Callers
// that need to tell a replay from an expiry check the files table.
func (r *PostgresRepository) Consume(ctx context.Context, ownerID, storageHandle string, now time.Time) error {
	query := `
		UPDATE upload_slots SET consumed_at = $3
		WHERE storage_handle = $1 AND owner_id = $2
		  AND consumed_at IS NULL AND expires_at > $3
	`
	res, err := r.db.ExecContext(ctx, query, storageHandle, ownerID, now)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrSlotExpired
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
