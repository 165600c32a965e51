package client

import (
	"context"

	"github.com/dmitrijs2005/docvault/internal/client/models"
)

// Client is the vault server as seen by client services.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, username string, salt, verifier []byte) error
	GetSalt(ctx context.Context, username string) ([]byte, error)
	Login(ctx context.Context, username string, verifier []byte) (string, error)
	SetAccessToken(token string)

	AllocateUploadSlot(ctx context.Context) (*models.UploadSlot, error)
	RegisterFile(ctx context.Context, storageHandle, filename, mimeType string, size int64) (string, error)
	ListFiles(ctx context.Context) ([]*models.FileInfo, error)
	GetFileURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error)
}
