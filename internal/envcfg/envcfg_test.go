package envcfg

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type countingNotifier struct {
	mu   sync.Mutex
	msgs []string
	keys map[string]bool
}

func newCountingNotifier() *countingNotifier {
	return &countingNotifier{keys: make(map[string]bool)}
}

func (n *countingNotifier) Notify(_, key, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if key != "" && n.keys[key] {
		return
	}
	if key != "" {
		n.keys[key] = true
	}
	n.msgs = append(n.msgs, message)
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func TestGetFromScript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`window.__ENV = {"NEXT_PUBLIC_HUGGINGFACE_API_KEY": "hf_abc", "OTHER": "x"};`))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil, nil)
	if got := l.Get("NEXT_PUBLIC_HUGGINGFACE_API_KEY", ""); got != "hf_abc" {
		t.Errorf("Get() = %q, want hf_abc", got)
	}
	if got := l.Get("OTHER", ""); got != "x" {
		t.Errorf("Get(OTHER) = %q, want x", got)
	}
}

func TestUnreachableScriptFallsBack(t *testing.T) {
	n := newCountingNotifier()
	l := NewLoader("http://127.0.0.1:1/env-config.js", n, nil)

	if got := l.Get("NEXT_PUBLIC_HUGGINGFACE_API_KEY", ""); got != "" {
		t.Errorf("Get() = %q, want empty fallback", got)
	}
	if n.count() != 1 {
		t.Fatalf("warnings = %d, want 1", n.count())
	}

	// Subsequent calls in the same session neither re-fetch nor re-warn.
	_ = l.Get("NEXT_PUBLIC_HUGGINGFACE_API_KEY", "")
	_ = l.Get("ANYTHING", "zz")
	if n.count() != 1 {
		t.Errorf("warnings = %d after repeated Get, want still 1", n.count())
	}
}

func TestMalformedScriptFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`console.log("not a config object")`))
	}))
	defer srv.Close()

	n := newCountingNotifier()
	l := NewLoader(srv.URL, n, nil)

	if got := l.Get("NEXT_PUBLIC_HUGGINGFACE_API_KEY", ""); got != "" {
		t.Errorf("Get() = %q, want empty fallback", got)
	}
	if n.count() != 1 {
		t.Errorf("warnings = %d, want 1", n.count())
	}
}

func TestUnknownKeyUsesCallerFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`window.__ENV = {"A": "1"};`))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil, nil)
	if got := l.Get("MISSING", "def"); got != "def" {
		t.Errorf("Get(MISSING) = %q, want def", got)
	}
}

func TestRefreshRefetches(t *testing.T) {
	fetches := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fetches++
		_, _ = w.Write([]byte(`window.__ENV = {"A": "1"};`))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, nil, nil)
	_ = l.Get("A", "")
	_ = l.Get("A", "")
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1 (cached)", fetches)
	}
	l.Refresh()
	_ = l.Get("A", "")
	if fetches != 2 {
		t.Errorf("fetches = %d after Refresh, want 2", fetches)
	}
}
