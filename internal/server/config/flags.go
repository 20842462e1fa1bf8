package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-g string   gRPC health bind address; empty disables it
//	-d string   PostgreSQL DSN, or "memory"
//	-s string   token signing secret
//	-t int      access token validity, minutes
//	-l bool     enable rate limiting (write -l=false to disable)
//	-r string   Redis address for shared rate-limit counters
//	-v string   log level
//
// Only these flags are picked out of args, so -c/-config and flags meant for
// other components pass through untouched.
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, "a", "g", "d", "s", "t", "l", "r", "v")

	fs := flagx.NewFlagSet("server")

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP listen address")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health listen address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN or \"memory\"")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	ttl := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.BoolVar(&config.RateLimitEnabled, "l", config.RateLimitEnabled, "enable rate limiting")
	fs.StringVar(&config.RateLimitRedis.Addr, "r", config.RateLimitRedis.Addr, "redis address for rate limiting")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
