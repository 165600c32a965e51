// Package client talks to the docvault server.
//
// GRPCClient wraps the generated-style rpc.VaultServiceClient: it attaches
// the access token to outgoing metadata, bounds every call with the
// configured timeout, and maps gRPC status codes back to the sentinels in
// internal/common so callers can use errors.Is. Transport failures surface
// as ErrUnavailable.
//
// InitDatabase opens the CLI's local SQLite session store and applies its
// embedded goose migrations.
package client
