// Package netx moves ciphertext containers to and from presigned object
// storage URLs. Payloads are opaque byte streams; nothing here inspects or
// re-encodes them.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
)

const (
	opUpload   = "upload"
	opDownload = "download"

	// errBodyLimit caps how much of an error response body is kept.
	errBodyLimit = 512
)

// StatusError is a non-2xx answer from the object store.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("%s failed: %d %s; body: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Is lets callers match a rejected upload slot with errors.Is(err, common.ErrSlotExpired).
// S3 answers 403 for presigned URLs whose signature window has passed and
// 412 when an object already sits at the key.
func (e *StatusError) Is(target error) bool {
	if e.Op != opUpload || target != common.ErrSlotExpired {
		return false
	}
	return e.StatusCode == http.StatusForbidden || e.StatusCode == http.StatusPreconditionFailed
}

// BlobClient performs raw PUT/GET requests against presigned URLs.
type BlobClient struct {
	http *http.Client
}

// NewBlobClient returns a BlobClient whose requests time out after timeout.
// A zero timeout means no client-side limit beyond the caller's context.
func NewBlobClient(timeout time.Duration) *BlobClient {
	return &BlobClient{http: &http.Client{Timeout: timeout}}
}

// Put uploads body verbatim to a presigned PUT URL.
func (c *BlobClient) Put(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.ContentLength = int64(len(body))
	req.Header.Set("Content-Type", common.DefaultMimeType)
	// signed into the slot URL; the store refuses to overwrite
	req.Header.Set("If-None-Match", "*")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(opUpload, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Get downloads the object behind a presigned GET URL.
func (c *BlobClient) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(opDownload, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func newStatusError(op string, resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))
	return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
}
