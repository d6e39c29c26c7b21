package config

import "time"

// StatsConfig contains statistics snapshot configuration.
type StatsConfig struct {
	// Staleness is how old the materialized snapshot may be before a stats
	// read refreshes it synchronously.
	Staleness time.Duration `env:"STALENESS" envDefault:"5m"`

	// RefreshSchedule is the cron expression for the background snapshot
	// refresher. Empty disables scheduled refreshes.
	RefreshSchedule string `env:"REFRESH_SCHEDULE" envDefault:"*/4 * * * *"`
}

// Sanitize applies guardrails to stats configuration values.
func (c *StatsConfig) Sanitize() {
	if c.Staleness <= 0 {
		c.Staleness = 5 * time.Minute
	}
}
