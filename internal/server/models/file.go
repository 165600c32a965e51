// Package models defines server-side data models persisted in Postgres.
package models

import "time"

// FileRecord is the directory entry for one stored container. All fields
// are immutable once registered; the record is never updated or deleted.
type FileRecord struct {
	ID            string
	OwnerID       string
	StorageHandle string
	Filename      string
	MimeType      string
	// Size is the plaintext length reported by the uploader.
	Size      int64
	CreatedAt time.Time
}

// UploadSlot is the server's memory of an issued presigned PUT. A slot can
// be consumed once, by its owner, before ExpiresAt.
type UploadSlot struct {
	StorageHandle string
	OwnerID       string
	ExpiresAt     time.Time
	ConsumedAt    *time.Time
	CreatedAt     time.Time
}
