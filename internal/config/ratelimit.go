package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig carries the per-capability request budgets applied by the
// rate limiting middleware.  All budgets share a single fixed window.  The
// signin/signup budgets are keyed by caller IP (the caller is not yet
// authenticated); the weather budgets are keyed by user ID.
type RateLimitConfig struct {
	Enabled   bool
	Window    time.Duration
	Signin    int // attempts per window per IP
	Signup    int // attempts per window per IP
	Weather   int // requests per window per user
	Forecast  int // requests per window per user
	Pollution int // requests per window per user
	Dashboard int // requests per window per user
	Prefix    string
}

func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:   envBool("RATE_LIMIT_ENABLED", true),
		Window:    envDur("RATE_LIMIT_WINDOW", time.Minute),
		Signin:    envInt("RATE_LIMIT_SIGNIN", 10),
		Signup:    envInt("RATE_LIMIT_SIGNUP", 5),
		Weather:   envInt("RATE_LIMIT_WEATHER", 30),
		Forecast:  envInt("RATE_LIMIT_FORECAST", 20),
		Pollution: envInt("RATE_LIMIT_POLLUTION", 20),
		Dashboard: envInt("RATE_LIMIT_DASHBOARD", 15),
		Prefix:    envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
