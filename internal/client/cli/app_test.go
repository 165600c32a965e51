package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/transfer"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	registerErr error
	loginErr    error
	pingErr     error
	restoreUser string

	gotUser     string
	gotPassword string
	loggedOut   bool
	closed      bool
}

func (f *fakeAuth) Register(_ context.Context, u string, p []byte) error {
	f.gotUser, f.gotPassword = u, string(p)
	return f.registerErr
}
func (f *fakeAuth) Login(_ context.Context, u string, p []byte) error {
	f.gotUser, f.gotPassword = u, string(p)
	return f.loginErr
}
func (f *fakeAuth) RestoreSession(context.Context) (string, error) { return f.restoreUser, nil }
func (f *fakeAuth) Logout(context.Context) error                   { f.loggedOut = true; return nil }
func (f *fakeAuth) Ping(context.Context) error                     { return f.pingErr }
func (f *fakeAuth) Close(context.Context) error                    { f.closed = true; return nil }

type fakeVault struct {
	uploadErr error
	files     []*models.FileInfo
	doc       *transfer.Document
	fetchErr  error

	gotUpload     transfer.UploadRequest
	gotKey        string
	gotPassphrase string
}

func (f *fakeVault) Upload(_ context.Context, req transfer.UploadRequest) (string, error) {
	f.gotUpload = req
	f.gotUpload.Plaintext = bytes.Clone(req.Plaintext)
	f.gotPassphrase = string(req.Passphrase)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "rec-1", nil
}
func (f *fakeVault) List(context.Context) ([]*models.FileInfo, error) { return f.files, nil }
func (f *fakeVault) FetchURL(_ context.Context, key string) (string, *models.FileInfo, error) {
	f.gotKey = key
	if f.fetchErr != nil {
		return "", nil, f.fetchErr
	}
	return "https://blobs.example/" + key, &models.FileInfo{ID: key, Filename: "memo.txt", MimeType: "text/plain", Size: 18}, nil
}
func (f *fakeVault) Download(_ context.Context, key string, pw []byte) (*transfer.Document, error) {
	f.gotKey, f.gotPassphrase = key, string(pw)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &transfer.Document{Plaintext: bytes.Clone(f.doc.Plaintext), Filename: f.doc.Filename, MimeType: f.doc.MimeType}, nil
}

func newTestApp(auth *fakeAuth, vault *fakeVault, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		config:      &config.Config{ServerEndpointAddr: "127.0.0.1:50051"},
		logger:      logging.Nop(),
		authService: auth,
		vault:       vault,
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         out,
	}, out
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{
		ServerEndpointAddr: "127.0.0.1:1",
		SessionDBPath:      t.TempDir() + "/session.db",
		LogLevel:           "warn",
	}

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, a.authService)
	require.NotNil(t, a.vault)
	require.NoError(t, a.authService.Close(context.Background()))
	require.NoError(t, a.db.Close())
}

func TestNewApp_BadLogLevel(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestApp_RunRestoresSessionAndCloses(t *testing.T) {
	capturePrints(t)

	auth := &fakeAuth{restoreUser: "alice", pingErr: errors.New("connection refused")}
	a, out := newTestApp(auth, &fakeVault{}, "exit\n")

	a.Run(context.Background())

	assert.Equal(t, "alice", a.userName)
	assert.True(t, auth.closed)
	assert.Contains(t, out.String(), "not reachable")
	assert.Contains(t, out.String(), "Signed in as alice")
	assert.Equal(t, "(alice) ", a.getStatus())
}
