package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/blobstore"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/repomanager"
)

// BlobGateway is the object-storage side of the vault.
type BlobGateway interface {
	AllocateUploadSlot(ctx context.Context) (*blobstore.Slot, error)
	Resolve(ctx context.Context, storageHandle string) (string, error)
	Exists(ctx context.Context, storageHandle string) (bool, error)
}

// RegisterInput is what an uploader reports about a container it has PUT.
type RegisterInput struct {
	StorageHandle string
	Filename      string
	MimeType      string
	Size          int64
}

// VaultService is the directory: it issues upload slots, registers uploaded
// containers, lists a principal's records and gates download URLs on
// ownership. It never sees plaintext or passphrases.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobs       BlobGateway
	logger      logging.Logger
	now         func() time.Time
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, blobs BlobGateway, l logging.Logger) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		blobs:       blobs,
		logger:      l.With("module", "vault_service"),
		now:         time.Now,
	}
}

// AllocateSlot presigns an upload URL under a fresh handle and remembers the
// slot so exactly one registration by ownerID can follow.
func (s *VaultService) AllocateSlot(ctx context.Context, ownerID string) (*blobstore.Slot, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthorized
	}

	slot, err := s.blobs.AllocateUploadSlot(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocate slot: %w", err)
	}

	err = s.repomanager.Slots(s.db).Create(ctx, &models.UploadSlot{
		StorageHandle: slot.StorageHandle,
		OwnerID:       ownerID,
		ExpiresAt:     slot.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("save slot: %w", err)
	}

	s.logger.Debug(ctx, "slot allocated", "owner", ownerID, "handle", slot.StorageHandle, "expires_at", slot.ExpiresAt)
	return slot, nil
}

// RegisterFile creates the record for an uploaded container. In one
// transaction it consumes ownerID's slot for the handle, checks the blob is
// really there, and inserts the record; any failure leaves no record and
// keeps the slot unconsumed.
//
// Errors: common.ErrValidation for bad input or a missing blob,
// common.ErrConflict if the handle is already registered,
// common.ErrSlotExpired if the slot is unknown, foreign, used or expired.
func (s *VaultService) RegisterFile(ctx context.Context, ownerID string, in RegisterInput) (*models.FileRecord, error) {
	if ownerID == "" {
		return nil, common.ErrUnauthorized
	}

	in.Filename = strings.TrimSpace(in.Filename)
	switch {
	case in.StorageHandle == "":
		return nil, fmt.Errorf("%w: storage handle is required", common.ErrValidation)
	case in.Filename == "":
		return nil, fmt.Errorf("%w: filename is required", common.ErrValidation)
	case in.Size < 0:
		return nil, fmt.Errorf("%w: negative size", common.ErrValidation)
	}
	if in.MimeType == "" {
		in.MimeType = common.DefaultMimeType
	}

	var rec *models.FileRecord
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Slots(tx).Consume(ctx, ownerID, in.StorageHandle, s.now()); err != nil {
			return err
		}

		ok, err := s.blobs.Exists(ctx, in.StorageHandle)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: nothing uploaded under this handle", common.ErrValidation)
		}

		rec, err = s.repomanager.Files(tx).Create(ctx, &models.FileRecord{
			OwnerID:       ownerID,
			StorageHandle: in.StorageHandle,
			Filename:      in.Filename,
			MimeType:      in.MimeType,
			Size:          in.Size,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrSlotExpired) {
			return nil, s.slotFailure(ctx, ownerID, in.StorageHandle)
		}
		return nil, fmt.Errorf("register file: %w", err)
	}

	s.logger.Info(ctx, "file registered", "owner", ownerID, "id", rec.ID, "size", rec.Size)
	return rec, nil
}

// slotFailure tells the caller's own replayed registration from an expired
// slot. A handle registered by someone else looks like an expired slot.
func (s *VaultService) slotFailure(ctx context.Context, ownerID, storageHandle string) error {
	exists, err := s.repomanager.Files(s.db).ExistsByHandle(ctx, ownerID, storageHandle)
	if err != nil {
		return fmt.Errorf("register file: %w", err)
	}
	if exists {
		return common.ErrConflict
	}
	return common.ErrSlotExpired
}

// List returns ownerID's records, newest first. An anonymous caller gets an
// empty list.
func (s *VaultService) List(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	out := []*models.FileRecord{}
	if ownerID == "" {
		return out, nil
	}

	for rec, err := range s.repomanager.Files(s.db).ListByOwner(ctx, ownerID) {
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// FetchURL authorizes ownerID against the record and only then asks the blob
// gateway for a retrievable URL. A missing and a foreign record are both
// common.ErrAccessDenied.
func (s *VaultService) FetchURL(ctx context.Context, ownerID, handleOrID string) (string, *models.FileRecord, error) {
	if ownerID == "" {
		return "", nil, common.ErrUnauthorized
	}
	if handleOrID == "" {
		return "", nil, common.ErrAccessDenied
	}

	rec, err := s.repomanager.Files(s.db).Authorize(ctx, ownerID, handleOrID)
	if err != nil {
		if errors.Is(err, common.ErrAccessDenied) {
			s.logger.Warn(ctx, "fetch denied", "owner", ownerID)
			return "", nil, err
		}
		return "", nil, fmt.Errorf("authorize: %w", err)
	}

	url, err := s.blobs.Resolve(ctx, rec.StorageHandle)
	if err != nil {
		return "", nil, fmt.Errorf("resolve: %w", err)
	}
	return url, rec, nil
}
