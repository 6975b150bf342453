package record

import (
	"testing"
	"time"
)

func TestLocalIDSequenceWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1721924567001)
	g := NewIDGenerator(func() time.Time { return fixed })

	if got := g.LocalID(); got != "local-1721924567001-0" {
		t.Errorf("first id = %q", got)
	}
	if got := g.LocalID(); got != "local-1721924567001-1" {
		t.Errorf("second id = %q", got)
	}

	fixed = fixed.Add(time.Millisecond)
	if got := g.LocalID(); got != "local-1721924567002-0" {
		t.Errorf("after tick id = %q", got)
	}
}

func TestLocalIDUnique(t *testing.T) {
	g := NewIDGenerator(nil)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.LocalID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestIsLocalID(t *testing.T) {
	g := NewIDGenerator(nil)
	if id := g.LocalID(); !IsLocalID(id) {
		t.Errorf("IsLocalID(%q) = false", id)
	}
	if IsLocalID(NewID()) {
		t.Error("uuid reported as local id")
	}
}

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	if len(id) != 36 {
		t.Errorf("id %q is not a canonical uuid", id)
	}
}
