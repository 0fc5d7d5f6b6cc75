package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rowanvale/auxpack/annotator"
	"github.com/rowanvale/auxpack/hostapi"
	"github.com/rowanvale/auxpack/nodes"
	"github.com/rowanvale/auxpack/registry"
)

// TestLoadMissingFile verifies a missing config file falls back to defaults
func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "auxpack.yaml"))
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Remote.Enabled {
		t.Errorf("Expected remote disabled by default")
	}
	if cfg.Remote.Host != "127.0.0.1" || cfg.Remote.Port != 8188 {
		t.Errorf("Expected default host 127.0.0.1:8188, got %s:%d", cfg.Remote.Host, cfg.Remote.Port)
	}
	if len(cfg.DisabledSources) != 0 || len(cfg.ExcludeFromAIO) != 0 {
		t.Errorf("Expected no source filters by default")
	}
}

// TestLoadYAML verifies values are read from the file and unset keys keep
// their defaults
func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auxpack.yaml")
	body := `remote:
  enabled: true
  host: gpubox.local
  port: 9090
output_dir: /srv/aux
disabled_sources:
  - canny
  - hed
exclude_from_aio:
  - TilePreprocessor
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Remote.Enabled || cfg.Remote.Host != "gpubox.local" || cfg.Remote.Port != 9090 {
		t.Errorf("Expected remote gpubox.local:9090 enabled, got %+v", cfg.Remote)
	}
	if cfg.Remote.Timeout != -1 {
		t.Errorf("Expected default timeout -1, got %d", cfg.Remote.Timeout)
	}
	if cfg.OutputDir != "/srv/aux" {
		t.Errorf("Expected output dir /srv/aux, got %s", cfg.OutputDir)
	}
	if len(cfg.DisabledSources) != 2 || cfg.DisabledSources[0] != "canny" {
		t.Errorf("Expected disabled sources [canny hed], got %v", cfg.DisabledSources)
	}
	if len(cfg.ExcludeFromAIO) != 1 || cfg.ExcludeFromAIO[0] != "TilePreprocessor" {
		t.Errorf("Expected AIO exclusion [TilePreprocessor], got %v", cfg.ExcludeFromAIO)
	}
}

// TestEnvOverrides verifies AUXPACK_* variables win over file values
func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auxpack.yaml")
	if err := os.WriteFile(path, []byte("remote:\n  host: filehost\n  port: 9000\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv("AUXPACK_REMOTE", "true")
	t.Setenv("AUXPACK_REMOTE_HOST", "envhost")
	t.Setenv("AUXPACK_DISABLED_SOURCES", "canny, hed")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Remote.Enabled {
		t.Errorf("Expected AUXPACK_REMOTE to enable the backend")
	}
	if cfg.Remote.Host != "envhost" {
		t.Errorf("Expected host envhost, got %s", cfg.Remote.Host)
	}
	if cfg.Remote.Port != 9000 {
		t.Errorf("Expected file port 9000 to survive, got %d", cfg.Remote.Port)
	}
	if len(cfg.DisabledSources) != 2 || cfg.DisabledSources[1] != "hed" {
		t.Errorf("Expected disabled sources [canny hed], got %v", cfg.DisabledSources)
	}
}

// TestLoadRejectsBadValues verifies malformed ports fail loudly
func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auxpack.yaml")
	if err := os.WriteFile(path, []byte("remote:\n  port: 0\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("Expected error for port 0")
	}

	t.Setenv("AUXPACK_REMOTE_PORT", "not-a-port")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("Expected error for unparsable AUXPACK_REMOTE_PORT")
	}
}

// TestDisabledSourcesExcludedFromBuild verifies configured source filters
// reach discovery through Options
func TestDisabledSourcesExcludedFromBuild(t *testing.T) {
	annotator.ResetBackends()
	defer annotator.ResetBackends()

	rt := hostapi.NewLocalRuntime(registry.New())
	rt.Out = t.TempDir()

	cfg := Default()
	cfg.DisabledSources = []string{"canny"}
	pack := nodes.Build(rt, cfg.Options())

	if _, ok := pack.Classes.Lookup("CannyEdgePreprocessor"); ok {
		t.Errorf("Expected canny source to be skipped")
	}
	if _, ok := pack.Classes.Lookup("BinaryPreprocessor"); !ok {
		t.Errorf("Expected remaining sources to load")
	}
}

// TestConnectRequiresEnabled verifies Connect refuses a disabled remote
func TestConnectRequiresEnabled(t *testing.T) {
	if _, err := Default().Connect(nil); err == nil {
		t.Errorf("Expected error connecting with the remote backend disabled")
	}
}
