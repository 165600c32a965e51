package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

var serverFlags = []string{"-a", "-d", "-s", "-t", "-l", "-f", "-u", "-p", "-b", "-g", "-e"}

// parseFlags overlays short flags onto config:
//
//	-a string   gRPC bind address
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret
//	-t int      access token validity, minutes
//	-l int      upload slot validity, minutes
//	-f int      download URL validity, minutes
//	-u string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 endpoint
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTTL := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (minutes)")
	slotTTL := fs.Int("l", int(config.SlotTTL.Minutes()), "upload slot validity (minutes)")
	fetchTTL := fs.Int("f", int(config.FetchURLTTL.Minutes()), "download URL validity (minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 endpoint")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTTL) * time.Minute
	config.SlotTTL = time.Duration(*slotTTL) * time.Minute
	config.FetchURLTTL = time.Duration(*fetchTTL) * time.Minute
}
