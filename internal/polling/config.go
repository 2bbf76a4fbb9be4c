package polling

import (
	"time"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 30 * time.Second

// MinInterval keeps a watch from hammering the backend.
const MinInterval = time.Second

// Config holds the polling configuration
type Config struct {
	Interval time.Duration
}

// NewConfig returns a configuration for interval, clamped to MinInterval.
// A zero interval means DefaultInterval.
func NewConfig(interval time.Duration) *Config {
	switch {
	case interval == 0:
		interval = DefaultInterval
	case interval < MinInterval:
		interval = MinInterval
	}
	return &Config{Interval: interval}
}
