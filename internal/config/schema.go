package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Bus       BusConfig       `yaml:"bus"`
	Log       LogConfig       `yaml:"log"`
	Discovery DiscoveryConfig `yaml:"discovery"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"` // every route is mounted below this prefix
}

// BusConfig selects the message bus to explore
type BusConfig struct {
	Kind    string `yaml:"kind"`              // system, session, address
	Address string `yaml:"address,omitempty"` // only with kind: address
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Color  bool   `yaml:"color"`
	ToFile bool   `yaml:"to_file"`
	Dir    string `yaml:"dir,omitempty"`
}

// DiscoveryConfig tunes the bus walk
type DiscoveryConfig struct {
	Timeouts TimeoutConfig `yaml:"timeouts"`
	// QuietNamespaces are service prefixes whose parse failures are not logged
	QuietNamespaces []string `yaml:"quiet_namespaces"`
}

// TimeoutConfig bounds each kind of bus call
type TimeoutConfig struct {
	ListNames  Duration `yaml:"list_names"`
	Enumerate  Duration `yaml:"enumerate"`
	Owner      Duration `yaml:"owner"`
	Introspect Duration `yaml:"introspect"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
