package record

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NewID returns a store-assigned identifier for records created online.
func NewID() string {
	return uuid.New().String()
}

// IDGenerator produces timestamp-derived identifiers for records created
// while offline. A per-millisecond sequence keeps IDs unique within a
// process; uniqueness across processes relies on millisecond resolution,
// matching the remote store's client-generated ID scheme.
type IDGenerator struct {
	mu     sync.Mutex
	clock  func() time.Time
	lastMs int64
	seq    int
}

// NewIDGenerator creates a generator using the given clock (nil = wall clock).
func NewIDGenerator(clock func() time.Time) *IDGenerator {
	if clock == nil {
		clock = time.Now
	}
	return &IDGenerator{clock: clock}
}

// LocalID returns the next offline identifier, e.g. "local-1721924567001-0".
func (g *IDGenerator) LocalID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.clock().UnixMilli()
	if ms == g.lastMs {
		g.seq++
	} else {
		g.lastMs = ms
		g.seq = 0
	}
	return fmt.Sprintf("local-%d-%d", ms, g.seq)
}

// IsLocalID reports whether id was generated offline.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, "local-")
}
