package config

import (
	"fmt"
	"strconv"
	"time"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

const envPrefix = "NOTES_"

// parseEnv overlays NOTES_* environment variables onto config.
//
// NOTES_ACCESS_TOKEN_TTL accepts a Go duration ("45m") or a bare number of
// minutes ("45").
func parseEnv(config *Config, lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}

	get := func(name string) (string, bool) {
		return lookup(envPrefix + name)
	}

	if v, ok := get("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := get("GRPC_HEALTH_ADDR"); ok {
		config.GRPCHealthAddr = v
	}
	if v, ok := get("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := get("SECRET_KEY"); ok {
		config.SecretKey = v
	}
	if v, ok := get("ACCESS_TOKEN_TTL"); ok {
		d, err := parseMinutesOrDuration(v)
		if err != nil {
			return fmt.Errorf("%sACCESS_TOKEN_TTL: %w", envPrefix, err)
		}
		config.AccessTokenValidityDuration = d
	}
	if v, ok := get("RATE_LIMIT_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_ENABLED: %w", envPrefix, err)
		}
		config.RateLimitEnabled = b
	}
	if v, ok := get("RATE_LIMIT_REDIS_ADDR"); ok {
		config.RateLimitRedis.Addr = v
	}
	if v, ok := get("RATE_LIMIT_REDIS_PASSWORD"); ok {
		config.RateLimitRedis.Password = v
	}
	if v, ok := get("RATE_LIMIT_REDIS_DB"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_REDIS_DB: %w", envPrefix, err)
		}
		config.RateLimitRedis.DB = n
	}
	if v, ok := get("RATE_LIMIT_REDIS_PREFIX"); ok {
		config.RateLimitRedis.Prefix = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		config.LogLevel = v
	}
	return nil
}

func parseMinutesOrDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	return time.ParseDuration(s)
}
