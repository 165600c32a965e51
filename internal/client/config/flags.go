package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

var clientFlags = []string{"-a", "-v", "-T"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   address and port of the vault server
//	-v string   path of the local session database
//	-T int      per-call timeout, seconds
//
// Arguments not listed above are dropped by flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.SessionDBPath, "v", cfg.SessionDBPath, "local session database path")
	timeout := fs.Int("T", int(cfg.RPCTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(flagx.FilterArgs(args, clientFlags)); err != nil {
		panic(err)
	}

	cfg.RPCTimeout = time.Duration(*timeout) * time.Second
}
