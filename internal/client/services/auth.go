// Package services contains application services for the docvault CLI.
// This file defines the account service: register, login, and the cached
// session that lets the CLI skip login after a restart.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
	"github.com/dmitrijs2005/docvault/internal/dbx"
)

const (
	metaUsername    = "username"
	metaAccessToken = "access_token"

	saltSize = 32
)

// AuthService defines account operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the session locally.
//   - RestoreSession: reuse a persisted session, if any.
//   - Logout: forget the session locally and on the transport.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	RestoreSession(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database for the session.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db}
}

func validateCredentials(username string, password []byte) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if len(password) == 0 {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return nil
}

// Register creates a new account on the server. It generates a random salt,
// derives a master key from the password, computes a verifier, and sends
// salt and verifier to the server. The password never leaves the process.
func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	salt := common.GenerateRandByteArray(saltSize)
	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	if err := a.client.Register(ctx, username, salt, cryptox.MakeVerifier(key)); err != nil {
		return fmt.Errorf("register error: %w", err)
	}
	return nil
}

// Login fetches the salt, proves knowledge of the password with a verifier,
// and stores the returned access token together with the username.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	salt, err := a.client.GetSalt(ctx, username)
	if err != nil {
		return fmt.Errorf("get salt error: %w", err)
	}

	key := cryptox.DeriveMasterKey(password, salt)
	defer common.WipeByteArray(key)

	token, err := a.client.Login(ctx, username, cryptox.MakeVerifier(key))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, username, token); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, username, token string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metaUsername, []byte(username)); err != nil {
			return err
		}
		return repo.Set(ctx, metaAccessToken, []byte(token))
	})
}

// RestoreSession loads a persisted session into the client and returns its
// username. It returns "" when nothing is stored. The token is not checked
// here; an expired one is reported by the first call that needs it.
func (a *authService) RestoreSession(ctx context.Context) (string, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	username, err := repo.Get(ctx, metaUsername)
	if err != nil {
		return "", err
	}
	token, err := repo.Get(ctx, metaAccessToken)
	if err != nil {
		return "", err
	}
	if len(username) == 0 || len(token) == 0 {
		return "", nil
	}

	a.client.SetAccessToken(string(token))
	return string(username), nil
}

// Logout drops the token from the transport and wipes the stored session.
func (a *authService) Logout(ctx context.Context) error {
	a.client.SetAccessToken("")
	return metadata.NewSQLiteRepository(a.db).Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
