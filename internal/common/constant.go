// Package common contains shared constants and sentinel errors used across
// docvault components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultMimeType is recorded when a caller uploads a document without
// declaring its type.
const DefaultMimeType = "application/octet-stream"
