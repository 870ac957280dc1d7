package config

import (
	"strings"
	"time"
)

// RateLimitConfig parameterises one Redis token bucket.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string // ip | user | route | ip_route | user_route | ip_user | ip_user_route
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads the RATE_LIMIT_* defaults and then the scoped
// overrides RATE_LIMIT_<SCOPE>_*. Booking writes and admin login use
// separate scopes so a flood of one does not starve the other.
func LoadRateLimitConfig(scope string, capacity int, every time.Duration) RateLimitConfig {
	scope = strings.ToUpper(scope)
	scoped := func(k string) string { return "RATE_LIMIT_" + scope + "_" + k }

	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", capacity),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", every),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStr("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl") + ":" + strings.ToLower(scope),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	def.Enabled = envBool(scoped("ENABLED"), def.Enabled)
	def.Capacity = envInt(scoped("CAPACITY"), def.Capacity)
	def.RefillInterval = envDur(scoped("REFILL_INTERVAL"), def.RefillInterval)
	def.KeyStrategy = envStr(scoped("KEY_STRATEGY"), def.KeyStrategy)

	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}
