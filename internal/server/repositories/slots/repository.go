package slots

import (
	"context"
	"time"

	"github.com/dmitrijs2005/docvault/internal/server/models"
)

// Repository tracks issued upload slots.
type Repository interface {
	Create(ctx context.Context, slot *models.UploadSlot) error
	Consume(ctx context.Context, ownerID, storageHandle string, now time.Time) error
}
