package health

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
)

// steppingClock advances past the throttle window on every read so each
// monitor tick performs a real check.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(ThrottleWindow + time.Second)
	return c.now
}

func waitForCalls(t *testing.T, p *fakePinger, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.callCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("ping calls = %d, want at least %d", p.callCount(), want)
}

func TestMonitorLoop(t *testing.T) {
	p := &fakePinger{}
	clock := &steppingClock{now: time.Unix(1000, 0)}
	r := NewReporter("http://probe.invalid", p, bus.New(), nil, nil, nil, clock.Now)
	m := NewMonitor(r, 5*time.Millisecond, nil)

	m.Start(context.Background())
	waitForCalls(t, p, 3)
	m.Stop()

	stopped := p.callCount()
	time.Sleep(50 * time.Millisecond)
	if got := p.callCount(); got > stopped+1 {
		t.Errorf("ping calls kept growing after Stop: %d -> %d", stopped, got)
	}
}

func TestMonitorNetworkChanged(t *testing.T) {
	p := &fakePinger{}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	r := newTestReporter(p, clock, nil)
	m := NewMonitor(r, time.Hour, nil)

	r.CheckBackend(context.Background(), false)
	m.NetworkChanged(context.Background())
	if got := p.callCount(); got != 2 {
		t.Errorf("ping calls = %d, want 2 (network change forces a check)", got)
	}
}
