package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	require.NoError(t, err)
	return v
}

// ---- fake client ----

type fakeClient struct {
	CloseErr    error
	RegisterErr error

	GetSaltRet []byte
	GetSaltErr error

	LoginRet string
	LoginErr error

	PingErr error

	LastRegisterUser     string
	LastRegisterSalt     []byte
	LastRegisterVerifier []byte

	LastLoginUser     string
	LastLoginVerifier []byte

	Token  string
	Called int
}

func (f *fakeClient) Close() error                   { return f.CloseErr }
func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }
func (f *fakeClient) SetAccessToken(token string)    { f.Token = token }

func (f *fakeClient) Register(ctx context.Context, username string, salt, verifier []byte) error {
	f.Called++
	f.LastRegisterUser = username
	f.LastRegisterSalt = append([]byte(nil), salt...)
	f.LastRegisterVerifier = append([]byte(nil), verifier...)
	return f.RegisterErr
}

func (f *fakeClient) GetSalt(ctx context.Context, username string) ([]byte, error) {
	f.Called++
	return append([]byte(nil), f.GetSaltRet...), f.GetSaltErr
}

func (f *fakeClient) Login(ctx context.Context, username string, verifier []byte) (string, error) {
	f.Called++
	f.LastLoginUser = username
	f.LastLoginVerifier = append([]byte(nil), verifier...)
	if f.LoginErr != nil {
		return "", f.LoginErr
	}
	f.Token = f.LoginRet
	return f.LoginRet, nil
}

func (f *fakeClient) AllocateUploadSlot(ctx context.Context) (*models.UploadSlot, error) {
	return nil, errors.New("not used")
}
func (f *fakeClient) RegisterFile(ctx context.Context, storageHandle, filename, mimeType string, size int64) (string, error) {
	return "", errors.New("not used")
}
func (f *fakeClient) ListFiles(ctx context.Context) ([]*models.FileInfo, error) {
	return nil, errors.New("not used")
}
func (f *fakeClient) GetFileURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error) {
	return "", nil, errors.New("not used")
}

// ---- TESTS ----

func TestRegister_SendsSaltAndMatchingVerifier(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, setupDB(t))

	require.NoError(t, svc.Register(context.Background(), "alice", []byte("pw")))

	assert.Equal(t, "alice", fc.LastRegisterUser)
	require.Len(t, fc.LastRegisterSalt, saltSize)
	want := cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("pw"), fc.LastRegisterSalt))
	assert.Equal(t, want, fc.LastRegisterVerifier)
}

func TestRegister_ServerErrorWrapped(t *testing.T) {
	fc := &fakeClient{RegisterErr: common.ErrConflict}
	svc := NewAuthService(fc, setupDB(t))

	err := svc.Register(context.Background(), "alice", []byte("pw"))
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.ErrorContains(t, err, "register error")
}

func TestCredentialsValidatedBeforeIO(t *testing.T) {
	fc := &fakeClient{}
	svc := NewAuthService(fc, setupDB(t))
	ctx := context.Background()

	assert.ErrorIs(t, svc.Register(ctx, " ", []byte("pw")), common.ErrValidation)
	assert.ErrorIs(t, svc.Register(ctx, "alice", nil), common.ErrValidation)
	assert.ErrorIs(t, svc.Login(ctx, "", []byte("pw")), common.ErrValidation)
	assert.ErrorIs(t, svc.Login(ctx, "alice", []byte{}), common.ErrValidation)
	assert.Zero(t, fc.Called)
}

func TestLogin_PersistsSession(t *testing.T) {
	salt := []byte("server-salt")
	fc := &fakeClient{GetSaltRet: salt, LoginRet: "tok-1"}
	db := setupDB(t)
	svc := NewAuthService(fc, db)

	require.NoError(t, svc.Login(context.Background(), "alice", []byte("pw")))

	assert.Equal(t, cryptox.MakeVerifier(cryptox.DeriveMasterKey([]byte("pw"), salt)), fc.LastLoginVerifier)
	assert.Equal(t, []byte("alice"), getMeta(t, db, metaUsername))
	assert.Equal(t, []byte("tok-1"), getMeta(t, db, metaAccessToken))
}

func TestLogin_Failures(t *testing.T) {
	t.Run("get salt", func(t *testing.T) {
		fc := &fakeClient{GetSaltErr: client.ErrUnavailable}
		db := setupDB(t)
		err := NewAuthService(fc, db).Login(context.Background(), "alice", []byte("pw"))
		assert.ErrorIs(t, err, client.ErrUnavailable)
		assert.ErrorContains(t, err, "get salt error")
		assert.Nil(t, getMeta(t, db, metaAccessToken))
	})

	t.Run("wrong password", func(t *testing.T) {
		fc := &fakeClient{GetSaltRet: []byte("s"), LoginErr: common.ErrUnauthorized}
		db := setupDB(t)
		err := NewAuthService(fc, db).Login(context.Background(), "alice", []byte("nope"))
		assert.ErrorIs(t, err, common.ErrUnauthorized)
		assert.Nil(t, getMeta(t, db, metaAccessToken))
	})

	t.Run("session store closed", func(t *testing.T) {
		fc := &fakeClient{GetSaltRet: []byte("s"), LoginRet: "tok"}
		db := setupDB(t)
		require.NoError(t, db.Close())
		err := NewAuthService(fc, db).Login(context.Background(), "alice", []byte("pw"))
		assert.ErrorContains(t, err, "session saving error")
	})
}

func TestRestoreSession(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	first := &fakeClient{GetSaltRet: []byte("s"), LoginRet: "tok-9"}
	require.NoError(t, NewAuthService(first, db).Login(ctx, "alice", []byte("pw")))

	second := &fakeClient{}
	user, err := NewAuthService(second, db).RestoreSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "tok-9", second.Token)
}

func TestRestoreSession_Empty(t *testing.T) {
	fc := &fakeClient{}
	user, err := NewAuthService(fc, setupDB(t)).RestoreSession(context.Background())
	require.NoError(t, err)
	assert.Empty(t, user)
	assert.Empty(t, fc.Token)
}

func TestLogout_ClearsSessionAndToken(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	fc := &fakeClient{GetSaltRet: []byte("s"), LoginRet: "tok"}
	svc := NewAuthService(fc, db)

	require.NoError(t, svc.Login(ctx, "alice", []byte("pw")))
	require.NoError(t, svc.Logout(ctx))

	assert.Empty(t, fc.Token)
	assert.Nil(t, getMeta(t, db, metaUsername))
	assert.Nil(t, getMeta(t, db, metaAccessToken))

	user, err := svc.RestoreSession(ctx)
	require.NoError(t, err)
	assert.Empty(t, user)
}

func TestPingAndClose_Proxy(t *testing.T) {
	fc := &fakeClient{PingErr: client.ErrUnavailable, CloseErr: errors.New("closed")}
	svc := NewAuthService(fc, setupDB(t))

	assert.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	assert.EqualError(t, svc.Close(context.Background()), "closed")
}
