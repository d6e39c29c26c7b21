package config

import (
	"time"

	"github.com/humzam/compute-jobs-dashboard/internal/ratelimit"
)

// RateLimitConfig contains the per-category request limits.
type RateLimitConfig struct {
	// Enabled toggles rate limiting entirely.
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Per-category limits within a sliding window.
	ReadLimit  int `env:"READ"  envDefault:"100"`
	WriteLimit int `env:"WRITE" envDefault:"20"`
	StatsLimit int `env:"STATS" envDefault:"30"`

	// Window is the sliding window length shared by all categories.
	Window time.Duration `env:"WINDOW" envDefault:"1m"`

	// Exempt lists identities (client IPs) that bypass limiting.
	Exempt []string `env:"EXEMPT" envDefault:"127.0.0.1,::1"`
}

// Sanitize applies guardrails to rate limit configuration values.
func (c *RateLimitConfig) Sanitize() {
	if c.ReadLimit <= 0 {
		c.ReadLimit = 100
	}
	if c.WriteLimit <= 0 {
		c.WriteLimit = 20
	}
	if c.StatsLimit <= 0 {
		c.StatsLimit = 30
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
}

// Policies converts the configuration to limiter policies.
func (c *RateLimitConfig) Policies() map[ratelimit.Category]ratelimit.Policy {
	return map[ratelimit.Category]ratelimit.Policy{
		ratelimit.CategoryRead:  {MaxRequests: c.ReadLimit, Window: c.Window},
		ratelimit.CategoryWrite: {MaxRequests: c.WriteLimit, Window: c.Window},
		ratelimit.CategoryStats: {MaxRequests: c.StatsLimit, Window: c.Window},
	}
}
