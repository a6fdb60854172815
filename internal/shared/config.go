package shared

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Composer ComposerConfig `toml:"composer"`
	Sandbox  SandboxConfig  `toml:"sandbox"`
}

// APIConfig contains settings for the posting backend.
type APIConfig struct {
	BaseURL           string   `toml:"base_url"`
	Token             string   `toml:"token"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the sandbox HTTP server.
type ServerConfig struct {
	Host              string  `toml:"host"`
	Port              int     `toml:"port"`
	RequestsPerSecond float64 `toml:"requests_per_second"` // 0 disables the sandbox rate limit
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ComposerConfig contains composer defaults.
type ComposerConfig struct {
	DefaultMode string `toml:"default_mode"`
}

// SandboxConfig describes the fake catalog served by the sandbox backend.
type SandboxConfig struct {
	Platforms map[string]SandboxPlatform `toml:"platforms"`
	// Fail lists platforms whose posts the sandbox reports as failed, keyed by platform with the error text as value.
	Fail map[string]string `toml:"fail"`
}

// SandboxPlatform is a single platform entry in [SandboxConfig].
type SandboxPlatform struct {
	Enabled bool `toml:"enabled"`
	Limit   int  `toml:"limit"`
}

// PlatformIDs returns the sandbox platform identifiers in sorted order.
func (s SandboxConfig) PlatformIDs() []string {
	ids := make([]string, 0, len(s.Platforms))
	for id := range s.Platforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Duration wraps [time.Duration] so it can be written as a string ("30s") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// A sandbox table in the file replaces the default catalog instead of merging into it.
	if md.IsDefined("sandbox", "platforms") {
		var fresh Config
		if _, err := toml.Decode(string(data), &fresh); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		config.Sandbox.Platforms = fresh.Sandbox.Platforms
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
