// Package models defines the client-side view of vault records.
package models

import "time"

// UploadSlot is a one-time, time-bounded destination for one container.
type UploadSlot struct {
	URL           string
	StorageHandle string
	ExpiresAt     time.Time
}

// FileInfo describes a registered document. Size is the plaintext length.
type FileInfo struct {
	ID            string
	StorageHandle string
	Filename      string
	MimeType      string
	Size          int64
	CreatedAt     time.Time
}
