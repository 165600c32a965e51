// Package cli provides the interactive docvault command-line client.
//
// It wires configuration, the local session store, the gRPC client and the
// transfer orchestrator into a small REPL. Passwords and passphrases are
// read without echo and wiped after use; decrypted documents are written
// atomically to disk.
//
// Commands:
//   - register, login, logout
//   - upload <path> [mime-type]
//   - list
//   - url <handle|id>
//   - download <handle|id> [out-path]
//   - help, exit | quit
package cli
