// Package config loads pack settings from a small YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/client"
	"github.com/rowanvale/auxpack/nodes"
)

// RemoteConfig points model-backed preprocessors at a ComfyUI host.
type RemoteConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Host    string `yaml:"host" json:"host"`
	Port    int    `yaml:"port" json:"port"`
	// Timeout is the websocket read timeout in seconds, -1 waits forever.
	Timeout int `yaml:"timeout" json:"timeout"`
}

// Config represents the pack configuration
type Config struct {
	Remote          RemoteConfig `yaml:"remote" json:"remote"`
	OutputDir       string       `yaml:"output_dir" json:"output_dir"`
	DisabledSources []string     `yaml:"disabled_sources" json:"disabled_sources"`
	ExcludeFromAIO  []string     `yaml:"exclude_from_aio" json:"exclude_from_aio"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Remote: RemoteConfig{
			Enabled: false,
			Host:    "127.0.0.1",
			Port:    8188,
			Timeout: -1,
		},
	}
}

// Load reads the YAML file at path, applies AUXPACK_* environment
// overrides and validates the result. A missing file is not an error;
// defaults plus the environment are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overrides individual fields from the environment. Variables
// that are set but unparsable are reported rather than skipped.
func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("AUXPACK_REMOTE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUXPACK_REMOTE %q: %w", v, err)
		}
		c.Remote.Enabled = b
	}
	if v, ok := os.LookupEnv("AUXPACK_REMOTE_HOST"); ok {
		c.Remote.Host = v
	}
	if v, ok := os.LookupEnv("AUXPACK_REMOTE_PORT"); ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AUXPACK_REMOTE_PORT %q: %w", v, err)
		}
		c.Remote.Port = p
	}
	if v, ok := os.LookupEnv("AUXPACK_OUTPUT_DIR"); ok {
		c.OutputDir = v
	}
	if v, ok := os.LookupEnv("AUXPACK_DISABLED_SOURCES"); ok {
		c.DisabledSources = splitList(v)
	}
	if v, ok := os.LookupEnv("AUXPACK_EXCLUDE_FROM_AIO"); ok {
		c.ExcludeFromAIO = splitList(v)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Remote.Port < 1 || c.Remote.Port > 65535 {
		return fmt.Errorf("remote port must be between 1 and 65535, got %d", c.Remote.Port)
	}
	if c.Remote.Enabled && c.Remote.Host == "" {
		return fmt.Errorf("remote host must be set when the remote backend is enabled")
	}
	if c.Remote.Timeout < -1 {
		return fmt.Errorf("remote timeout must be -1 or a number of seconds, got %d", c.Remote.Timeout)
	}
	return nil
}

// Options maps the configuration onto pack build options. Backend is left
// unset; callers that want remote inference dial it with Connect and fill
// it in themselves.
func (c *Config) Options() nodes.Options {
	return nodes.Options{
		DisabledSources: c.DisabledSources,
		ExcludeFromAIO:  c.ExcludeFromAIO,
	}
}

// Connect dials the configured ComfyUI host and returns a backend bound
// to it. The host's node catalog is fetched up front so a bad address
// fails here instead of on the first detection.
func (c *Config) Connect(callbacks *client.HostClientCallbacks) (*annotator.RemoteBackend, error) {
	if !c.Remote.Enabled {
		return nil, errors.New("remote backend is not enabled")
	}
	hc := client.NewHostClientWithTimeout(c.Remote.Host, c.Remote.Port, callbacks, c.Remote.Timeout)
	if err := hc.Init(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", c.Remote.Host, c.Remote.Port, err)
	}
	return annotator.NewRemoteBackend(hc), nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
