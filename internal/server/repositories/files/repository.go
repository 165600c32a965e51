package files

import (
	"context"
	"iter"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository is the directory of registered containers.
type Repository interface {
	Create(ctx context.Context, rec *models.FileRecord) (*models.FileRecord, error)
	ListByOwner(ctx context.Context, ownerID string) iter.Seq2[*models.FileRecord, error]
	Authorize(ctx context.Context, ownerID, handleOrID string) (*models.FileRecord, error)
	ExistsByHandle(ctx context.Context, ownerID, storageHandle string) (bool, error)
}
