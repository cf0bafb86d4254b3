// Package config loads shell configuration from an optional YAML file
// with environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"

	"github.com/MarinaBrowser/marina/shell/internal/shared/types"
)

// Duration is a time.Duration that parses "500ms" style strings from
// YAML documents and environment values.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for envconfig.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// UnmarshalYAML implements yaml.BytesUnmarshaler for goccy/go-yaml.
func (d *Duration) UnmarshalYAML(raw []byte) error {
	return d.UnmarshalText([]byte(strings.Trim(string(raw), `"'`)))
}

// Std returns the underlying time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all shell configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Session   SessionConfig   `yaml:"session"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Surface   SurfaceConfig   `yaml:"surface"`
	Org       OrgConfig       `yaml:"org"`
	Favicon   FaviconConfig   `yaml:"favicon"`
	Agent     AgentConfig     `yaml:"agent"`
	Logging   LogConfig       `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig holds the diagnostics HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"MARINA_PORT" yaml:"port"`
	Host string `envconfig:"MARINA_HOST" yaml:"host"`
}

// BridgeConfig holds UI bridge configuration.
type BridgeConfig struct {
	CallTimeout Duration `envconfig:"MARINA_BRIDGE_CALL_TIMEOUT" yaml:"call_timeout"`
}

// SessionConfig holds persistence configuration.
type SessionConfig struct {
	// ProfileDir overrides the default profile location.
	ProfileDir string `envconfig:"MARINA_PROFILE_DIR" yaml:"profile_dir"`
	// Debounce is the autosave quiet window.
	Debounce Duration `envconfig:"MARINA_SESSION_DEBOUNCE" yaml:"debounce"`
	// Compression selects the snapshot codec: none, gzip or zstd.
	Compression string `envconfig:"MARINA_SESSION_COMPRESSION" yaml:"compression"`
}

// GestureConfig tunes swipe detection.
type GestureConfig struct {
	Threshold       float64  `envconfig:"MARINA_GESTURE_THRESHOLD" yaml:"threshold"`
	NoiseFloor      float64  `envconfig:"MARINA_GESTURE_NOISE_FLOOR" yaml:"noise_floor"`
	Dominance       float64  `envconfig:"MARINA_GESTURE_DOMINANCE" yaml:"dominance"`
	SettleAfter     Duration `envconfig:"MARINA_GESTURE_SETTLE_AFTER" yaml:"settle_after"`
	EventsPerSecond int      `envconfig:"MARINA_GESTURE_EPS" yaml:"events_per_second"`
	Burst           int      `envconfig:"MARINA_GESTURE_BURST" yaml:"burst"`
}

// SurfaceConfig tunes the surface coordinator.
type SurfaceConfig struct {
	MountTimeout Duration `envconfig:"MARINA_SURFACE_MOUNT_TIMEOUT" yaml:"mount_timeout"`
}

// OrgConfig holds organization store policy.
type OrgConfig struct {
	// DockDeletePolicy is what happens to a deleted dock's tabs:
	// demote or delete.
	DockDeletePolicy string `envconfig:"MARINA_DOCK_DELETE_POLICY" yaml:"dock_delete_policy"`
	// RestoreResetsForward clears the mirrored forward flag when a
	// forward intent restores a web URL from an overlay.
	RestoreResetsForward bool `envconfig:"MARINA_RESTORE_RESETS_FORWARD" yaml:"restore_resets_forward"`
}

// FaviconConfig tunes the metadata provider.
type FaviconConfig struct {
	Timeout      Duration `envconfig:"MARINA_FAVICON_TIMEOUT" yaml:"timeout"`
	MaxIconBytes int64    `envconfig:"MARINA_FAVICON_MAX_BYTES" yaml:"max_icon_bytes"`
	CacheSize    int      `envconfig:"MARINA_FAVICON_CACHE_SIZE" yaml:"cache_size"`
}

// AgentConfig holds the command-execution service configuration.
type AgentConfig struct {
	Address string `envconfig:"MARINA_AGENT_ADDR" yaml:"address"`
	Enabled bool   `envconfig:"MARINA_AGENT_ENABLED" yaml:"enabled"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"MARINA_LOG_LEVEL" yaml:"level"`
	Development bool   `envconfig:"MARINA_LOG_DEV" yaml:"development"`
}

// RateLimitConfig holds diagnostics API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"MARINA_RATE_LIMIT_RPS" yaml:"requests_per_second"`
	Burst             int  `envconfig:"MARINA_RATE_LIMIT_BURST" yaml:"burst"`
	Enabled           bool `envconfig:"MARINA_RATE_LIMIT_ENABLED" yaml:"enabled"`
}

// Default returns the full default configuration. Defaults live here
// rather than in envconfig tags so values loaded from a file are not
// clobbered when the corresponding variable is unset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8220",
			Host: "127.0.0.1",
		},
		Bridge: BridgeConfig{
			CallTimeout: Duration(5 * time.Second),
		},
		Session: SessionConfig{
			Debounce:    Duration(500 * time.Millisecond),
			Compression: "none",
		},
		Gesture: GestureConfig{
			Threshold:       100,
			NoiseFloor:      2,
			Dominance:       2,
			SettleAfter:     Duration(300 * time.Millisecond),
			EventsPerSecond: 60,
			Burst:           30,
		},
		Surface: SurfaceConfig{
			MountTimeout: Duration(10 * time.Second),
		},
		Org: OrgConfig{
			DockDeletePolicy: string(types.DockDeleteDemote),
		},
		Favicon: FaviconConfig{
			Timeout:      Duration(8 * time.Second),
			MaxIconBytes: 1 << 20,
			CacheSize:    512,
		},
		Agent: AgentConfig{
			Address: "localhost:50061",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// when non-empty, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects out-of-range values early so the server never boots
// half-configured.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}
	if c.Gesture.Threshold <= 0 {
		return fmt.Errorf("gesture threshold must be positive, got %v", c.Gesture.Threshold)
	}
	if c.Gesture.EventsPerSecond <= 0 {
		return fmt.Errorf("gesture events per second must be positive, got %d", c.Gesture.EventsPerSecond)
	}
	if c.Session.Debounce.Std() < 0 {
		return fmt.Errorf("session debounce must not be negative, got %v", c.Session.Debounce.Std())
	}
	switch c.Session.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("unknown snapshot compression %q", c.Session.Compression)
	}
	if !types.DockDeletePolicy(c.Org.DockDeletePolicy).Valid() {
		return fmt.Errorf("unknown dock delete policy %q", c.Org.DockDeletePolicy)
	}
	if c.Bridge.CallTimeout.Std() <= 0 {
		return fmt.Errorf("bridge call timeout must be positive, got %v", c.Bridge.CallTimeout.Std())
	}
	return nil
}
