package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/docvault/internal/client/transfer"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/filex"
	"github.com/dustin/go-humanize"
)

var (
	errUsage              = errors.New("usage")
	errPassphraseMismatch = fmt.Errorf("%w: passphrases do not match", common.ErrValidation)
)

// readFile and writeFile are test seams.
var (
	readFile  = os.ReadFile
	writeFile = filex.WriteFileAtomic
)

func guessMimeType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return common.DefaultMimeType
}

// Upload encrypts a local file under a passphrase that is asked twice and
// stores it in the vault.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: upload <path> [mime-type]", errUsage)
	}
	path := args[0]

	data, err := readFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	defer common.WipeByteArray(data)

	mimeType := guessMimeType(path)
	if len(args) == 2 {
		mimeType = args[1]
	}

	passphrase, err := getPassword(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	confirm, err := getPassword(a.out, "Repeat passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(passphrase, confirm) {
		return errPassphraseMismatch
	}

	id, err := a.vault.Upload(ctx, transfer.UploadRequest{
		Plaintext:  data,
		Passphrase: passphrase,
		Filename:   filepath.Base(path),
		MimeType:   mimeType,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Stored %s as %s\n", filepath.Base(path), id)
	return nil
}

// List prints the caller's documents.
func (a *App) List(ctx context.Context) error {
	files, err := a.vault.List(ctx)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Fprintln(a.out, "No documents.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tCREATED")
	for _, f := range files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Filename, f.MimeType, humanize.Bytes(uint64(f.Size)), humanize.Time(f.CreatedAt))
	}
	return tw.Flush()
}

// URL prints a short-lived download URL for one document.
func (a *App) URL(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: url <handle|id>", errUsage)
	}

	url, info, err := a.vault.FetchURL(ctx, args[0])
	if err != nil {
		return err
	}

	if info != nil {
		fmt.Fprintf(a.out, "%s (%s, %s)\n", info.Filename, info.MimeType, humanize.Bytes(uint64(info.Size)))
	}
	fmt.Fprintln(a.out, url)
	return nil
}

// Download fetches and decrypts one document and writes it to disk. The
// output path defaults to the stored filename in the working directory, or
// to the last element of the handle when the record has no filename.
func (a *App) Download(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: download <handle|id> [out-path]", errUsage)
	}

	passphrase, err := getPassword(a.out, "Passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	doc, err := a.vault.Download(ctx, args[0], passphrase)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(doc.Plaintext)

	out := filepath.Base(doc.Filename)
	if len(args) == 2 {
		out = args[1]
	}
	if out == "" || out == "." || out == string(filepath.Separator) {
		out = filepath.Base(args[0])
	}

	if err := writeFile(out, doc.Plaintext, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	fmt.Fprintf(a.out, "Saved %s (%s)\n", out, humanize.Bytes(uint64(len(doc.Plaintext))))
	return nil
}
