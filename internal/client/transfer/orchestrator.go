package transfer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/logging"
)

// Directory is the server side of the protocol. client.GRPCClient
// satisfies it.
type Directory interface {
	AllocateUploadSlot(ctx context.Context) (*models.UploadSlot, error)
	RegisterFile(ctx context.Context, storageHandle, filename, mimeType string, size int64) (string, error)
	ListFiles(ctx context.Context) ([]*models.FileInfo, error)
	GetFileURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error)
}

// BlobStore moves opaque bytes to and from presigned URLs. netx.BlobClient
// satisfies it.
type BlobStore interface {
	Put(ctx context.Context, url string, body []byte) error
	Get(ctx context.Context, url string) ([]byte, error)
}

// UploadRequest is one document to store. MimeType may be empty.
type UploadRequest struct {
	Plaintext  []byte
	Passphrase []byte
	Filename   string
	MimeType   string
}

// Document is a decrypted download.
type Document struct {
	Plaintext []byte
	Filename  string
	MimeType  string
}

// Transfer records the progress of one upload.
type Transfer struct {
	State         State
	Err           error
	StorageHandle string
	RecordID      string
}

type Orchestrator struct {
	dir    Directory
	blobs  BlobStore
	logger logging.Logger
}

func NewOrchestrator(dir Directory, blobs BlobStore, l logging.Logger) *Orchestrator {
	return &Orchestrator{dir: dir, blobs: blobs, logger: l.With("module", "transfer")}
}

func (o *Orchestrator) advance(ctx context.Context, t *Transfer, next State) {
	o.logger.Debug(ctx, "transfer state", "from", t.State.String(), "to", next.String(), "handle", t.StorageHandle)
	t.State = next
}

func (o *Orchestrator) fail(ctx context.Context, t *Transfer, err error) {
	t.Err = &Error{State: t.State, Err: err}
	o.advance(ctx, t, Failed)
}

func validateUpload(req UploadRequest) error {
	switch {
	case len(req.Plaintext) == 0:
		return fmt.Errorf("%w: document is empty", common.ErrValidation)
	case len(req.Passphrase) == 0:
		return fmt.Errorf("%w: passphrase is required", common.ErrValidation)
	case strings.TrimSpace(req.Filename) == "":
		return fmt.Errorf("%w: filename is required", common.ErrValidation)
	}
	return nil
}

// Upload stores one document and returns the new record id.
func (o *Orchestrator) Upload(ctx context.Context, req UploadRequest) (string, error) {
	t := o.Run(ctx, req)
	if t.Err != nil {
		return "", t.Err
	}
	return t.RecordID, nil
}

// Run executes the upload state machine and returns the finished Transfer.
// On failure t.State is Failed, t.Err is an *Error and no record exists.
func (o *Orchestrator) Run(ctx context.Context, req UploadRequest) *Transfer {
	t := &Transfer{State: Idle}

	if err := validateUpload(req); err != nil {
		o.fail(ctx, t, err)
		return t
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = common.DefaultMimeType
	}

	o.advance(ctx, t, Encrypting)
	container, err := cryptox.Encrypt(req.Plaintext, req.Passphrase)
	if err != nil {
		o.fail(ctx, t, err)
		return t
	}

	slot, err := o.dir.AllocateUploadSlot(ctx)
	if err != nil {
		o.fail(ctx, t, fmt.Errorf("allocate slot: %w", err))
		return t
	}
	t.StorageHandle = slot.StorageHandle
	o.advance(ctx, t, SlotAllocated)

	o.advance(ctx, t, Uploading)
	if err := o.blobs.Put(ctx, slot.URL, container); err != nil {
		o.fail(ctx, t, err)
		return t
	}

	o.advance(ctx, t, Registering)
	id, err := o.dir.RegisterFile(ctx, slot.StorageHandle, req.Filename, mimeType, int64(len(req.Plaintext)))
	if err != nil {
		o.fail(ctx, t, fmt.Errorf("register: %w", err))
		return t
	}

	t.RecordID = id
	o.advance(ctx, t, Done)
	return t
}

// List returns the caller's documents, newest first. An anonymous caller
// gets an empty list.
func (o *Orchestrator) List(ctx context.Context) ([]*models.FileInfo, error) {
	files, err := o.dir.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return files, nil
}

// FetchURL returns a short-lived download URL for a document the caller
// owns. A missing document and someone else's document both yield
// common.ErrAccessDenied.
func (o *Orchestrator) FetchURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error) {
	url, info, err := o.dir.GetFileURL(ctx, strings.TrimSpace(handleOrID))
	if err != nil {
		return "", nil, err
	}
	return url, info, nil
}

// DownloadAndDecrypt fetches the container behind url and opens it. A wrong
// passphrase and a corrupted container are both common.ErrAuthentication.
func (o *Orchestrator) DownloadAndDecrypt(ctx context.Context, url string, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase is required", common.ErrValidation)
	}

	container, err := o.blobs.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	plaintext, err := cryptox.Decrypt(container, passphrase)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// Download is FetchURL followed by DownloadAndDecrypt.
func (o *Orchestrator) Download(ctx context.Context, handleOrID string, passphrase []byte) (*Document, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase is required", common.ErrValidation)
	}

	url, info, err := o.FetchURL(ctx, handleOrID)
	if err != nil {
		return nil, err
	}

	plaintext, err := o.DownloadAndDecrypt(ctx, url, passphrase)
	if err != nil {
		return nil, err
	}

	doc := &Document{Plaintext: plaintext}
	if info != nil {
		doc.Filename = info.Filename
		doc.MimeType = info.MimeType
	}
	return doc, nil
}
