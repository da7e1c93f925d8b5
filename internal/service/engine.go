package service

import (
	"log/slog"
	"time"
)

// Engine runs the item and claim request workflow.
type Engine struct {
	items    ItemStore
	requests RequestStore
	users    UserStore
	now      func() time.Time
	log      *slog.Logger
}

// NewEngine returns an Engine over the given stores.
func NewEngine(items ItemStore, requests RequestStore, users UserStore, opts ...Option) *Engine {
	cfg := newConfig(opts)
	return &Engine{
		items:    items,
		requests: requests,
		users:    users,
		now:      cfg.now,
		log:      cfg.logger,
	}
}
