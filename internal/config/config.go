package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.lifesync/config.toml.
type Config struct {
	DefaultSession string `toml:"default_session"`
	UserID         string `toml:"user_id"`
	ListenAddr     string `toml:"listen_addr"`

	Remote RemoteConfig `toml:"remote"`
	AI     AIConfig     `toml:"ai"`
	Sync   SyncConfig   `toml:"sync"`
}

// RemoteConfig holds the remote document-store endpoints.
type RemoteConfig struct {
	BaseURL string `toml:"base_url"`
	// ProbeURL is a known static resource used for lightweight
	// reachability checks. Defaults to BaseURL + "/healthz".
	ProbeURL             string `toml:"probe_url"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	CheckIntervalSeconds int    `toml:"check_interval_seconds"`
}

// AIConfig holds the AI gateway upstream settings.
type AIConfig struct {
	UpstreamURL  string `toml:"upstream_url"`
	Model        string `toml:"model"`
	EnvScriptURL string `toml:"env_script_url"`
}

// SyncConfig holds reconciliation policy.
type SyncConfig struct {
	// PruneAfterSync removes local copies once they are confirmed in the
	// remote store. Default false: the local store is an archival
	// fallback, not a queue to be drained.
	PruneAfterSync bool `toml:"prune_after_sync"`
}

// Default returns a config with built-in defaults applied.
func Default() *Config {
	return &Config{
		DefaultSession: "main",
		ListenAddr:     "127.0.0.1:7600",
		Remote: RemoteConfig{
			TimeoutSeconds:       10,
			CheckIntervalSeconds: 30,
		},
		AI: AIConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// Load reads config from the given path, overlaying values onto defaults.
// Returns an error if the file is missing or malformed.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.Remote.ProbeURL == "" && cfg.Remote.BaseURL != "" {
		cfg.Remote.ProbeURL = cfg.Remote.BaseURL + "/healthz"
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
