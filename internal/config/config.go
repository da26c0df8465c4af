package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultListenAddr is the default address the HTTP server binds to
	DefaultListenAddr = "127.0.0.1:8000"
	// DefaultPicker is the default folder-picker backend
	DefaultPicker = "zenity"

	configDirName  = "gocryptfs-webui"
	configFileName = "config.toml"
)

// Config holds the daemon configuration
type Config struct {
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string `toml:"listen"`
	// Picker is the folder-picker backend: "zenity" or "portal"
	Picker string `toml:"picker"`
}

// DefaultPath returns the per-user config file location, or an empty string
// when no user config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// Load loads configuration from a TOML file
// Returns an empty config if the path is empty or the file doesn't exist
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Merge merges CLI flags into the config, with CLI flags taking precedence
// over config file values. Empty CLI values are ignored.
func (c *Config) Merge(listenAddr, picker string) {
	if listenAddr != "" {
		c.ListenAddr = listenAddr
	}
	if picker != "" {
		c.Picker = picker
	}
}

// ApplyDefaults applies default values for any unset fields
func (c *Config) ApplyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Picker == "" {
		c.Picker = DefaultPicker
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required (use --listen or set 'listen' in config file)")
	}

	if c.Picker != "zenity" && c.Picker != "portal" {
		return fmt.Errorf("picker must be 'zenity' or 'portal', got %q", c.Picker)
	}

	return nil
}
