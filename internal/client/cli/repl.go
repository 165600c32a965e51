package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/cryptox"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	List(ctx context.Context) error
	URL(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
}

// runREPL reads commands with readLine until it fails or the user types
// exit or quit. Command errors are reported and the loop carries on.
//
//	Not logged in:
//	  - help, register, login, list, exit | quit
//
//	Logged in:
//	  - help
//	  - upload <path> [mime]   encrypt and store a file
//	  - list                   list stored documents
//	  - url <handle|id>        print a short-lived download URL
//	  - download <handle|id> [out]
//	  - logout, exit | quit
func runREPL(ctx context.Context, a execIface, statusFn func() string, readLine func() (string, error)) {
	for {
		fmt.Printf("docvault %s> ", statusFn())
		line, err := readLine()
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		report := func(err error) {
			if err == nil {
				return
			}
			printlnFn("Error:", userMessage(err))
			if errors.Is(err, common.ErrTokenExpired) && a.isLoggedIn() {
				_ = a.Logout(ctx)
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload <path> [mime], (l)ist, url <id>, download <id> [out], logout, exit")
			} else {
				printlnFn("Available commands: register, login, (l)ist, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "upload":
			report(a.Upload(ctx, args))

		case "l", "list":
			report(a.List(ctx))

		case "url":
			report(a.URL(ctx, args))

		case "download":
			report(a.Download(ctx, args))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// userMessage turns an error into what the user sees. Decryption failures
// and access failures stay in their two uninformative buckets.
func userMessage(err error) string {
	switch {
	case cryptox.IsDecryptFailure(err):
		return common.ErrAuthentication.Error()
	case errors.Is(err, common.ErrAccessDenied):
		return "access denied"
	case errors.Is(err, common.ErrTokenExpired):
		return "session expired, please login again"
	case errors.Is(err, common.ErrUnauthorized):
		return "not authenticated, please login"
	case errors.Is(err, common.ErrSlotExpired):
		return "upload slot expired, please try again"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable"
	}
	return err.Error()
}
