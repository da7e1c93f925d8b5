package service

import (
	"log/slog"
	"time"
)

type config struct {
	now    func() time.Time
	logger *slog.Logger
}

func newConfig(opts []Option) config {
	cfg := config{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures an Engine or UserAdmin.
type Option func(*config)

// WithClock overrides the time source used for request and resolution dates.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger overrides the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}
