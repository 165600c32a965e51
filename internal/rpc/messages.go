package rpc

import "google.golang.org/protobuf/types/known/timestamppb"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterUserRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

type RegisterUserResponse struct {
	UserID string `json:"userId"`
}

type GetSaltRequest struct {
	Username string `json:"username"`
}

type GetSaltResponse struct {
	Salt []byte `json:"salt"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Verifier []byte `json:"verifier"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type AllocateUploadSlotRequest struct{}

type AllocateUploadSlotResponse struct {
	UploadURL     string                 `json:"uploadUrl"`
	StorageHandle string                 `json:"storageHandle"`
	ExpiresAt     *timestamppb.Timestamp `json:"expiresAt"`
}

// RegisterFileRequest describes a container already PUT to the slot URL.
// Size is the plaintext length, not the container length.
type RegisterFileRequest struct {
	StorageHandle string `json:"storageHandle"`
	Filename      string `json:"filename"`
	MimeType      string `json:"mimeType"`
	Size          int64  `json:"size"`
}

type RegisterFileResponse struct {
	ID string `json:"id"`
}

type ListFilesRequest struct{}

type ListFilesResponse struct {
	Files []*FileInfo `json:"files"`
}

// FileInfo is a FileRecord as seen by its owner. The owner id is never sent.
type FileInfo struct {
	ID            string                 `json:"id"`
	StorageHandle string                 `json:"storageHandle"`
	Filename      string                 `json:"filename"`
	MimeType      string                 `json:"mimeType"`
	Size          int64                  `json:"size"`
	CreatedAt     *timestamppb.Timestamp `json:"createdAt"`
}

type GetFileURLRequest struct {
	HandleOrID string `json:"handleOrId"`
}

type GetFileURLResponse struct {
	URL  string    `json:"url"`
	File *FileInfo `json:"file"`
}
