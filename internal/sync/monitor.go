package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultProbeInterval is how often the monitor probes the backend.
const DefaultProbeInterval = 30 * time.Second

// Monitor watches backend reachability and feeds transitions into the
// engine, standing in for the host's online/offline events.
type Monitor struct {
	probe    func(context.Context) bool
	engine   *Engine
	log      *zap.Logger
	interval time.Duration
}

// NewMonitor creates a connectivity monitor. probe defaults to the
// engine client's Ping; interval <= 0 falls back to
// DefaultProbeInterval.
func NewMonitor(engine *Engine, log *zap.Logger, probe func(context.Context) bool, interval time.Duration) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	if probe == nil {
		probe = engine.client.Ping
	}
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{probe: probe, engine: engine, log: log, interval: interval}
}

// Run probes until ctx is cancelled, reporting every state change to
// the engine.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	online := m.probe(ctx)
	m.engine.SetOnline(online)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := m.probe(ctx)
			if now != online {
				m.log.Info("connectivity changed", zap.Bool("online", now))
				online = now
				m.engine.SetOnline(now)
			}
		}
	}
}
