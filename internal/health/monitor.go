package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultCheckInterval is how often the monitor re-verifies reachability.
const DefaultCheckInterval = 30 * time.Second

// Monitor drives periodic backend checks and reacts to environment
// online/offline signals by forcing an immediate re-check.
type Monitor struct {
	reporter *Reporter
	interval time.Duration
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewMonitor creates a monitor. interval <= 0 uses DefaultCheckInterval.
func NewMonitor(reporter *Reporter, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{reporter: reporter, interval: interval, logger: logger}
}

// Start begins the periodic check loop.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go m.loop(ctx)
}

// Stop stops the loop.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// NetworkChanged forces a re-check outside the regular schedule, e.g. when
// the host signals an interface change.
func (m *Monitor) NetworkChanged(ctx context.Context) {
	m.reporter.ForceCheck(ctx, true)
}

func (m *Monitor) loop(ctx context.Context) {
	// Initial check so status is meaningful right after start.
	m.reporter.CheckBackend(ctx, true)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.reporter.CheckBackend(ctx, true)
		case <-ctx.Done():
			return
		}
	}
}
