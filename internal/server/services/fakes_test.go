package services

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/dbx"
	"github.com/dmitrijs2005/docvault/internal/server/blobstore"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/files"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/slots"
	"github.com/dmitrijs2005/docvault/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// fakeFilesRepo keeps records in insertion order and applies the same
// ownership and uniqueness rules as the Postgres repository.
type fakeFilesRepo struct {
	mu      sync.Mutex
	records []*models.FileRecord
	seq     int

	createErr error
	listErr   error
	authErr   error
	existsErr error
	creates   int
}

func (f *fakeFilesRepo) Create(ctx context.Context, rec *models.FileRecord) (*models.FileRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.records {
		if r.StorageHandle == rec.StorageHandle {
			return nil, common.ErrConflict
		}
	}
	f.seq++
	cp := *rec
	cp.ID = fmt.Sprintf("rec-%d", f.seq)
	cp.CreatedAt = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	f.records = append(f.records, &cp)
	out := cp
	return &out, nil
}

func (f *fakeFilesRepo) ListByOwner(ctx context.Context, ownerID string) iter.Seq2[*models.FileRecord, error] {
	return func(yield func(*models.FileRecord, error) bool) {
		if f.listErr != nil {
			yield(nil, f.listErr)
			return
		}
		f.mu.Lock()
		snapshot := slices.Clone(f.records)
		f.mu.Unlock()
		for i := len(snapshot) - 1; i >= 0; i-- {
			if snapshot[i].OwnerID != ownerID {
				continue
			}
			if !yield(snapshot[i], nil) {
				return
			}
		}
	}
}

func (f *fakeFilesRepo) Authorize(ctx context.Context, ownerID, handleOrID string) (*models.FileRecord, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.OwnerID == ownerID && (r.StorageHandle == handleOrID || r.ID == handleOrID) {
			return r, nil
		}
	}
	return nil, common.ErrAccessDenied
}

func (f *fakeFilesRepo) ExistsByHandle(ctx context.Context, ownerID, storageHandle string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.OwnerID == ownerID && r.StorageHandle == storageHandle {
			return true, nil
		}
	}
	return false, nil
}

type fakeSlotsRepo struct {
	mu    sync.Mutex
	slots map[string]*models.UploadSlot

	createErr  error
	consumeErr error
}

func (f *fakeSlotsRepo) Create(ctx context.Context, slot *models.UploadSlot) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slots == nil {
		f.slots = map[string]*models.UploadSlot{}
	}
	cp := *slot
	f.slots[slot.StorageHandle] = &cp
	return nil
}

func (f *fakeSlotsRepo) Consume(ctx context.Context, ownerID, storageHandle string, now time.Time) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slots[storageHandle]
	if !ok || s.OwnerID != ownerID || s.ConsumedAt != nil || !s.ExpiresAt.After(now) {
		return common.ErrSlotExpired
	}
	s.ConsumedAt = &now
	return nil
}

// unconsume mimics a transaction rollback for the slot row.
func (f *fakeSlotsRepo) unconsume(handle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.slots[handle]; ok {
		s.ConsumedAt = nil
	}
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	f *fakeFilesRepo
	s *fakeSlotsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Files(db dbx.DBTX) files.Repository          { return m.f }
func (m *fakeRepoManager) Slots(db dbx.DBTX) slots.Repository          { return m.s }

// fakeBlobs is an object store: put marks a handle as uploaded.
type fakeBlobs struct {
	mu      sync.Mutex
	n       int
	objects map[string]bool
	ttl     time.Duration
	now     func() time.Time

	allocErr   error
	resolveErr error
	existsErr  error
	resolved   []string
}

func newFakeBlobs(now func() time.Time) *fakeBlobs {
	return &fakeBlobs{objects: map[string]bool{}, ttl: 15 * time.Minute, now: now}
}

func (b *fakeBlobs) AllocateUploadSlot(ctx context.Context) (*blobstore.Slot, error) {
	if b.allocErr != nil {
		return nil, b.allocErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	h := fmt.Sprintf("users/2026/03/01/h%d", b.n)
	return &blobstore.Slot{URL: "https://blob.test/" + h + "?put", StorageHandle: h, ExpiresAt: b.now().Add(b.ttl)}, nil
}

func (b *fakeBlobs) Resolve(ctx context.Context, storageHandle string) (string, error) {
	if b.resolveErr != nil {
		return "", b.resolveErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resolved = append(b.resolved, storageHandle)
	return "https://blob.test/" + storageHandle + "?get", nil
}

func (b *fakeBlobs) Exists(ctx context.Context, storageHandle string) (bool, error) {
	if b.existsErr != nil {
		return false, b.existsErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.objects[storageHandle], nil
}

func (b *fakeBlobs) put(handle string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[handle] = true
}
