// Package notify converts agent-internal conditions into user-facing
// notifications (the agent's equivalent of UI toasts).
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
)

// Notification is a single user-facing message.
type Notification struct {
	ID      string    `json:"id"`
	Level   string    `json:"level"` // info, warn, error
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

const keepLast = 100

// Center collects notifications and republishes them on the bus under
// "notify.toast". Notifications with a non-empty key are emitted at most
// once per process; callers use keys for one-time warnings.
type Center struct {
	bus    *bus.Bus
	logger *zap.Logger

	mu     sync.Mutex
	seen   map[string]bool
	recent []Notification
}

// NewCenter creates a notification center.
func NewCenter(b *bus.Bus, logger *zap.Logger) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{
		bus:    b,
		logger: logger,
		seen:   make(map[string]bool),
	}
}

// Notify records and publishes a notification. A repeated non-empty key is
// dropped silently.
func (c *Center) Notify(level, key, message string) {
	c.mu.Lock()
	if key != "" {
		if c.seen[key] {
			c.mu.Unlock()
			return
		}
		c.seen[key] = true
	}
	n := Notification{
		ID:      uuid.New().String(),
		Level:   level,
		Message: message,
		At:      time.Now(),
	}
	c.recent = append(c.recent, n)
	if len(c.recent) > keepLast {
		c.recent = c.recent[len(c.recent)-keepLast:]
	}
	c.mu.Unlock()

	c.logger.Info("notification", zap.String("level", level), zap.String("message", message))
	if c.bus != nil {
		c.bus.Publish("notify.toast", n)
	}
}

// Recent returns the retained notifications, oldest first.
func (c *Center) Recent() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.recent))
	copy(out, c.recent)
	return out
}
