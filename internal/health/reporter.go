// Package health determines and caches backend reachability.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
)

const (
	// ProbeTimeout bounds the lightweight reachability probe.
	ProbeTimeout = 5 * time.Second
	// ThrottleWindow limits real backend checks to one per window;
	// checks inside the window return the cached result.
	ThrottleWindow = 10 * time.Second
	// ReconnectWindow is how long the "was offline" flag stays visible
	// after an offline→online transition.
	ReconnectWindow = 5 * time.Second
)

// Status is a snapshot of the connection state.
type Status struct {
	Reachable  bool      `json:"reachable"`
	LastCheck  time.Time `json:"lastCheck"`
	WasOffline bool      `json:"wasOffline"`
}

// Pinger performs a minimal read against the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Notifier emits a user-facing notification. Keyed notifications are
// deduplicated by the implementation.
type Notifier interface {
	Notify(level, key, message string)
}

// StatusCache persists the last known connection state for fast initial
// display on the next start.
type StatusCache interface {
	SetMeta(key, value string) error
}

// Reporter owns the connection status state: reachability, the throttle
// timestamp, and the reconnect flag. All mutation goes through it; there is
// no package-level state.
type Reporter struct {
	probeURL string
	backend  Pinger
	bus      *bus.Bus
	notifier Notifier
	cache    StatusCache
	logger   *zap.Logger
	clock    func() time.Time
	httpc    *http.Client

	mu            sync.Mutex
	reachable     bool
	checked       bool
	lastCheck     time.Time
	reconnectedAt time.Time
}

// NewReporter creates a reporter. clock may be nil (wall clock); notifier
// and cache may be nil.
func NewReporter(probeURL string, backend Pinger, b *bus.Bus, notifier Notifier, cache StatusCache, logger *zap.Logger, clock func() time.Time) *Reporter {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		probeURL:  probeURL,
		backend:   backend,
		bus:       b,
		notifier:  notifier,
		cache:     cache,
		logger:    logger,
		clock:     clock,
		httpc:     &http.Client{Timeout: ProbeTimeout},
		reachable: true, // optimistic until the first check says otherwise
	}
}

// SetInitial seeds reachability from a cached "last known good" value
// without counting as a real check.
func (r *Reporter) SetInitial(reachable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reachable = reachable
}

// CheckConnection performs a lightweight reachability probe against a known
// static resource. Probe failures are simply "offline"; there is no error
// result and no retry within a call.
func (r *Reporter) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, r.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		r.logger.Info("connectivity probe failed", zap.Error(err))
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < 500
}

// CheckBackend performs a minimal read against the remote store, throttled
// to one real check per ThrottleWindow (cached result otherwise). On a state
// transition it publishes a conn.* event and, when notify is set, emits a
// user-facing notification exactly once per transition.
func (r *Reporter) CheckBackend(ctx context.Context, notify bool) bool {
	r.mu.Lock()
	now := r.clock()
	if r.checked && now.Sub(r.lastCheck) < ThrottleWindow {
		cached := r.reachable
		r.mu.Unlock()
		return cached
	}
	// Claim the window before probing so concurrent callers get the
	// cached value instead of piling on.
	r.checked = true
	r.lastCheck = now
	prev := r.reachable
	r.mu.Unlock()

	err := r.backend.Ping(ctx)
	reachable := err == nil

	r.mu.Lock()
	r.reachable = reachable
	transitioned := reachable != prev
	if transitioned && reachable {
		r.reconnectedAt = r.clock()
	}
	r.mu.Unlock()

	if transitioned {
		r.onTransition(reachable, notify, err)
	}
	return reachable
}

// ForceCheck bypasses the throttle window. Used when the environment
// signals a network change.
func (r *Reporter) ForceCheck(ctx context.Context, notify bool) bool {
	r.mu.Lock()
	r.checked = false
	r.mu.Unlock()
	return r.CheckBackend(ctx, notify)
}

// Statusz returns the current snapshot.
func (r *Reporter) Statusz() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Reachable:  r.reachable,
		LastCheck:  r.lastCheck,
		WasOffline: !r.reconnectedAt.IsZero() && r.clock().Sub(r.reconnectedAt) < ReconnectWindow,
	}
}

func (r *Reporter) onTransition(reachable, notify bool, cause error) {
	if reachable {
		r.logger.Info("backend reachable again")
		if r.bus != nil {
			r.bus.Publish("conn.online", nil)
		}
		if notify && r.notifier != nil {
			r.notifier.Notify("info", "", "Back online. Your data will sync now.")
		}
	} else {
		r.logger.Warn("backend unreachable", zap.Error(cause))
		if r.bus != nil {
			r.bus.Publish("conn.offline", nil)
		}
		if notify && r.notifier != nil {
			r.notifier.Notify("warn", "", "You're offline. Changes are saved on this device.")
		}
	}
	if r.cache != nil {
		if err := r.cache.SetMeta("last_online", boolString(reachable)); err != nil {
			r.logger.Warn("failed to cache connection state", zap.Error(err))
		}
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
