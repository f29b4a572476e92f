// Package config loads the explorer configuration.
//
// Config file locations (priority order):
//  1. $DBUS_EXPLORER_CONFIG
//  2. ./dbus-explorer.yaml
//  3. $XDG_CONFIG_HOME/dbus-explorer/config.yaml
//  4. ~/.config/dbus-explorer/config.yaml
//  5. /etc/dbus-explorer/config.yaml
//
// Environment variables override the file, command line flags override both.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"dbusexplorer/internal/adapter"
	"dbusexplorer/internal/codec"
	"dbusexplorer/internal/logger"
	"dbusexplorer/internal/service"
)

const (
	// EnvAddr overrides server.addr
	EnvAddr = "DBUS_EXPLORER_ADDR"
	// EnvLogLevel overrides log.level
	EnvLogLevel = "DBUS_EXPLORER_LOG_LEVEL"

	DefaultAddr     = "127.0.0.1:2001"
	DefaultBasePath = "/local/dbus_explorer"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		cfg.ApplyEnv()
		return cfg, "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, errors.Wrap(err, "read config")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, errors.Wrap(err, "parse config")
	}

	cfg.applyDefaults()
	cfg.ApplyEnv()

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	timeouts := service.DefaultTimeouts()
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Addr:     DefaultAddr,
			BasePath: DefaultBasePath,
		},
		Bus: BusConfig{Kind: string(adapter.BusSystem)},
		Log: LogConfig{Level: "info", Color: true},
		Discovery: DiscoveryConfig{
			Timeouts: TimeoutConfig{
				ListNames:  Duration(timeouts.ListNames),
				Enumerate:  Duration(timeouts.Enumerate),
				Owner:      Duration(timeouts.Owner),
				Introspect: Duration(timeouts.Introspect),
			},
			QuietNamespaces: append([]string(nil), codec.DefaultQuietNamespaces...),
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = defaults.Server.BasePath
	}
	c.Server.BasePath = "/" + strings.Trim(c.Server.BasePath, "/")
	if c.Server.BasePath == "/" {
		c.Server.BasePath = ""
	}
	if c.Bus.Kind == "" {
		c.Bus.Kind = defaults.Bus.Kind
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Discovery.QuietNamespaces == nil {
		c.Discovery.QuietNamespaces = defaults.Discovery.QuietNamespaces
	}
}

// ApplyEnv overrides file values with DBUS_EXPLORER_* variables
func (c *Config) ApplyEnv() {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Server.Addr == "" {
		result = multierror.Append(result, errors.New("server.addr must not be empty"))
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, err)
	}

	switch adapter.BusKind(c.Bus.Kind) {
	case adapter.BusSystem, adapter.BusSession:
	case adapter.BusAddress:
		if c.Bus.Address == "" {
			result = multierror.Append(result, errors.New("bus.address is required when bus.kind is address"))
		}
	default:
		result = multierror.Append(result, errors.Errorf("unknown bus.kind %q", c.Bus.Kind))
	}

	for name, d := range map[string]Duration{
		"list_names": c.Discovery.Timeouts.ListNames,
		"enumerate":  c.Discovery.Timeouts.Enumerate,
		"owner":      c.Discovery.Timeouts.Owner,
		"introspect": c.Discovery.Timeouts.Introspect,
	} {
		if d.Duration() <= 0 {
			result = multierror.Append(result, errors.Errorf("discovery.timeouts.%s must be positive", name))
		}
	}

	return result.ErrorOrNil()
}

// BusSettings returns the dialer configuration
func (c *Config) BusSettings() adapter.BusConfig {
	return adapter.BusConfig{
		Kind:    adapter.BusKind(c.Bus.Kind),
		Address: c.Bus.Address,
	}
}

// Timeouts returns the per-call deadlines for the explorer
func (c *Config) Timeouts() service.Timeouts {
	t := c.Discovery.Timeouts
	return service.Timeouts{
		ListNames:  t.ListNames.Duration(),
		Enumerate:  t.Enumerate.Duration(),
		Owner:      t.Owner.Duration(),
		Introspect: t.Introspect.Duration(),
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	bus := c.Bus.Kind
	if c.Bus.Address != "" {
		bus += " (" + c.Bus.Address + ")"
	}
	t := c.Timeouts()
	return fmt.Sprintf("Listen: %s%s, Bus: %s, Log: %s\nTimeouts: list %s, enumerate %s, owner %s, introspect %s",
		c.Server.Addr, c.Server.BasePath, bus, c.Log.Level,
		t.ListNames, t.Enumerate, t.Owner, t.Introspect)
}
