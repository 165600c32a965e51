package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/config"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/client/services"
	"github.com/dmitrijs2005/docvault/internal/client/transfer"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/netx"
)

// Vault is the part of transfer.Orchestrator the commands use.
type Vault interface {
	Upload(ctx context.Context, req transfer.UploadRequest) (string, error)
	List(ctx context.Context) ([]*models.FileInfo, error)
	FetchURL(ctx context.Context, handleOrID string) (string, *models.FileInfo, error)
	Download(ctx context.Context, handleOrID string, passphrase []byte) (*transfer.Document, error)
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService services.AuthService
	vault       Vault
	userName    string
	reader      *bufio.Reader
	out         io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, logging.Options{Level: c.LogLevel, Format: "text"})
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := client.NewVaultClient(c.ServerEndpointAddr, c.RPCTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		authService: services.NewAuthService(apiClient, db),
		vault:       transfer.NewOrchestrator(apiClient, netx.NewBlobClient(c.RPCTimeout), logger),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

// Run restores a cached session, if any, and blocks in the REPL until the
// user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.authService.Close(ctx); err != nil {
			a.logger.Warn(ctx, "close client", "error", err)
		}
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	fmt.Fprintln(a.out, "Welcome to docvault CLI (type 'help' for commands)")

	if err := a.authService.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server %s is not reachable: %v\n", a.config.ServerEndpointAddr, err)
	}

	user, err := a.authService.RestoreSession(ctx)
	if err != nil {
		a.logger.Warn(ctx, "restore session", "error", err)
	}
	if user != "" {
		a.userName = user
		fmt.Fprintf(a.out, "Signed in as %s\n", user)
	}

	runREPL(ctx, a, a.getStatus, func() (string, error) { return readLine(a.reader) })
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", a.userName)
}
