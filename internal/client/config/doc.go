// Package config loads runtime configuration for the docvault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the vault gRPC endpoint
//	-v string   local session database path
//	-T int      per-call timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_db_path": "docvault.db",
//	  "rpc_timeout": "30s",
//	  "log_level": "warn"
//	}
package config
