// Package polling repeats a fetch on a fixed interval until cancelled.
package polling

import (
	"context"
	"log/slog"
	"time"
)

// PollFunc is one polling operation.
type PollFunc func(ctx context.Context) error

// Poller runs a PollFunc on every tick.
type Poller struct {
	config *Config
	poll   PollFunc
	l      *slog.Logger
}

// NewPoller creates a new poller instance
func NewPoller(cfg *Config, poll PollFunc) *Poller {
	return &Poller{
		config: cfg,
		poll:   poll,
		l:      slog.Default().With(slog.String("module", "polling")),
	}
}

// Start polls once immediately and then on every tick until ctx is done.
// A failed poll is logged and does not stop the loop. It returns the number
// of polls that ran.
func (p *Poller) Start(ctx context.Context) int {
	p.l.Debug("starting poller", slog.Duration("interval", p.config.Interval))

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	n := 0
	for {
		if ctx.Err() != nil {
			p.l.Debug("stopping poller", slog.Int("polls", n))
			return n
		}

		if err := p.poll(ctx); err != nil && ctx.Err() == nil {
			p.l.Warn("poll failed", slog.Any("error", err))
		}
		n++

		select {
		case <-ctx.Done():
			p.l.Debug("stopping poller", slog.Int("polls", n))
			return n
		case <-ticker.C:
		}
	}
}
