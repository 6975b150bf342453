package notify

import (
	"testing"
	"time"

	"github.com/NayandG07/LifeSync-AI-sub001/internal/bus"
)

func TestNotifyPublishesToast(t *testing.T) {
	b := bus.New()
	c := NewCenter(b, nil)

	ch, unsub := b.Subscribe("notify.", 10)
	defer unsub()

	c.Notify("info", "", "hello")

	select {
	case evt := <-ch:
		n, ok := evt.Payload.(Notification)
		if !ok {
			t.Fatalf("payload type = %T, want Notification", evt.Payload)
		}
		if n.Message != "hello" || n.Level != "info" {
			t.Errorf("notification = %+v", n)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for notify.toast event")
	}
}

func TestKeyedNotifyEmitsOnce(t *testing.T) {
	c := NewCenter(bus.New(), nil)

	c.Notify("warn", "env-config", "config script unreachable")
	c.Notify("warn", "env-config", "config script unreachable")
	c.Notify("warn", "env-config", "config script unreachable")

	if got := len(c.Recent()); got != 1 {
		t.Errorf("recent notifications = %d, want 1 (keyed dedup)", got)
	}
}

func TestUnkeyedNotifyRepeats(t *testing.T) {
	c := NewCenter(bus.New(), nil)

	c.Notify("info", "", "one")
	c.Notify("info", "", "two")

	if got := len(c.Recent()); got != 2 {
		t.Errorf("recent notifications = %d, want 2", got)
	}
}

func TestRecentBounded(t *testing.T) {
	c := NewCenter(bus.New(), nil)

	for range keepLast + 20 {
		c.Notify("info", "", "x")
	}
	if got := len(c.Recent()); got != keepLast {
		t.Errorf("recent notifications = %d, want %d", got, keepLast)
	}
}
