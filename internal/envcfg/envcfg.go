// Package envcfg loads runtime configuration published as a script exposing
// a key/value object (the deployment's env-config script). When the script
// cannot be fetched or parsed, hard-coded defaults are substituted and a
// one-time warning is emitted.
package envcfg

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const fetchTimeout = 5 * time.Second

// Defaults are substituted when the config script is unavailable.
var Defaults = map[string]string{
	"NEXT_PUBLIC_HUGGINGFACE_API_KEY": "",
}

// Notifier emits a user-facing notification; keyed messages are emitted at
// most once per process.
type Notifier interface {
	Notify(level, key, message string)
}

// Loader fetches and caches the runtime config object. The fetch happens
// lazily on first Get and is not repeated within the process unless
// Refresh is called.
type Loader struct {
	url      string
	httpc    *http.Client
	notifier Notifier
	logger   *zap.Logger

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

// NewLoader creates a loader for the given script URL. notifier may be nil.
func NewLoader(url string, notifier Notifier, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		url:      url,
		httpc:    &http.Client{Timeout: fetchTimeout},
		notifier: notifier,
		logger:   logger,
	}
}

// Get returns the configured value for key, or fallback when the key is
// absent from both the loaded config and the defaults.
func (l *Loader) Get(key, fallback string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.loaded {
		l.loadLocked(context.Background())
	}
	if v, ok := l.values[key]; ok {
		return v
	}
	return fallback
}

// Refresh re-fetches the config script on the next Get.
func (l *Loader) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
}

func (l *Loader) loadLocked(ctx context.Context) {
	l.loaded = true
	values, err := l.fetch(ctx)
	if err != nil {
		l.logger.Warn("env config script unavailable, using defaults",
			zap.String("url", l.url), zap.Error(err))
		if l.notifier != nil {
			l.notifier.Notify("warn", "env-config",
				"Runtime configuration could not be loaded; using built-in defaults.")
		}
		values = make(map[string]string, len(Defaults))
	}
	// Defaults backfill keys the script did not provide.
	for k, v := range Defaults {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}
	l.values = values
}

// fetch downloads the script and extracts the first object literal, e.g.
// `window.__ENV = {"KEY": "value"};`.
func (l *Loader) fetch(ctx context.Context) (map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return nil, &httpError{resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, err
	}
	return parseScript(string(body))
}

func parseScript(script string) (map[string]string, error) {
	start := strings.Index(script, "{")
	end := strings.LastIndex(script, "}")
	if start < 0 || end <= start {
		return nil, errMalformed
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(script[start:end+1]), &raw); err != nil {
		return nil, err
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			values[k] = s
		}
	}
	return values, nil
}

var errMalformed = &scriptError{}

type scriptError struct{}

func (*scriptError) Error() string { return "envcfg: no config object in script" }

type httpError struct{ code int }

func (e *httpError) Error() string { return "envcfg: fetch failed with status " + http.StatusText(e.code) }
