// Package rpc is the wire contract between the docvault CLI and server: the
// message types, a JSON gRPC codec, the service descriptor and the client
// stub.
//
// The service is plain gRPC (HTTP/2 framing, status codes, metadata) with
// messages encoded as JSON under the "json" content subtype. Timestamps use
// protobuf's well-known Timestamp type so both sides agree on precision.
package rpc
