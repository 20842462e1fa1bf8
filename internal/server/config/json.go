package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophnotes/internal/flagx"
	"github.com/dmitrijs2005/gophnotes/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer fields
// distinguish "absent" from "zero" so a partial file only overrides the keys
// it names. Durations accept "30m" or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                    *string           `json:"http_addr"`
	GRPCHealthAddr              *string           `json:"grpc_health_addr"`
	DatabaseDSN                 *string           `json:"database_dsn"`
	SecretKey                   *string           `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration   `json:"access_token_validity_duration"`
	RateLimitEnabled            *bool             `json:"rate_limit_enabled"`
	RateLimitRedisAddr          *string           `json:"rate_limit_redis_addr"`
	RateLimitRedisPassword      *string           `json:"rate_limit_redis_password"`
	RateLimitRedisDB            *int              `json:"rate_limit_redis_db"`
	RateLimitRedisPrefix        *string           `json:"rate_limit_redis_prefix"`
	RateLimits                  map[string]string `json:"rate_limits"`
	LogLevel                    *string           `json:"log_level"`
}

// parseJSON loads the file named by -c/-config in args, if any, and applies
// every key it sets. Entries under rate_limits are merged over the current
// budgets route by route.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (c *JsonConfig) apply(config *Config) {
	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setIf(&config.RateLimitEnabled, c.RateLimitEnabled)
	setIf(&config.RateLimitRedis.Addr, c.RateLimitRedisAddr)
	setIf(&config.RateLimitRedis.Password, c.RateLimitRedisPassword)
	setIf(&config.RateLimitRedis.DB, c.RateLimitRedisDB)
	setIf(&config.RateLimitRedis.Prefix, c.RateLimitRedisPrefix)
	if len(c.RateLimits) > 0 {
		merged := clone(config.RateLimits)
		for k, v := range c.RateLimits {
			merged[k] = v
		}
		config.RateLimits = merged
	}
	setIf(&config.LogLevel, c.LogLevel)
}
