package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
)

var knownFlags = []string{"-a", "-g", "-d", "-s", "-t", "-k", "-z", "-u", "-p", "-b", "-r", "-e"}

// parseFlags overlays Config fields given on the command line.
//
//	-a string   HTTP bind address (":8080")
//	-g string   gRPC bind address (":50051", empty disables)
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-t int      session validity, minutes
//	-k bool     mark the session cookie Secure
//	-z string   timezone for due dates
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket (empty disables export)
//	-r string   S3 region
//	-e string   S3 base endpoint
//
// Unknown flags are dropped by flagx.FilterArgs before parsing so that -c
// and other components' flags do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionMinutes := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "secure session cookie")
	fs.StringVar(&config.Timezone, "z", config.Timezone, "timezone for due dates")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.SessionValidityDuration = time.Duration(*sessionMinutes) * time.Minute
	return nil
}
