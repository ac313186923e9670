// internal/config/loader_test.go
//
// Loader tests: YAML base layer, BEACON_ env overlay precedence, and
// fail-fast validation.
//
// Run: go test ./internal/config -v

package config

import (
	"os"
	"path/filepath"
	"testing"
)

const baseYAML = `
http:
  listen_addr: ":8080"
storage:
  driver: "file"
  visits_path: "data/visits.json"
geo:
  provider: "off"
tracking:
  default_target_url: "https://example.com/"
  placeholder_image_url: "https://example.com/pixel.png"
`

// writeConf lays out <root>/conf/global.yaml and points BEACON_ROOT at it.
func writeConf(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	confDir := filepath.Join(root, "conf")
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		t.Fatalf("mkdir conf: %v", err)
	}
	if err := os.WriteFile(filepath.Join(confDir, "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write global.yaml: %v", err)
	}
	t.Setenv("BEACON_ROOT", root)
	return root
}

func TestLoadFromYAML(t *testing.T) {
	root := writeConf(t, baseYAML)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q, want :8080", cfg.HTTP.ListenAddr)
	}
	if cfg.Storage.Driver != "file" {
		t.Fatalf("Driver = %q, want file", cfg.Storage.Driver)
	}
	if cfg.Paths.Root != root {
		t.Fatalf("Root = %q, want %q", cfg.Paths.Root, root)
	}
	if Get() != cfg {
		t.Fatalf("Get must return the cached pointer")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	writeConf(t, baseYAML)
	t.Setenv("BEACON_HTTP__LISTEN_ADDR", ":9999")
	t.Setenv("BEACON_TRACKING__DEFAULT_TARGET_URL", "https://other.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.ListenAddr != ":9999" {
		t.Fatalf("env overlay lost: ListenAddr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Tracking.DefaultTargetURL != "https://other.example.com/" {
		t.Fatalf("env overlay lost: DefaultTargetURL = %q", cfg.Tracking.DefaultTargetURL)
	}
}

func TestValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"unknown storage driver", `
http:
  listen_addr: ":8080"
storage:
  driver: "carrier-pigeon"
geo:
  provider: "off"
tracking:
  default_target_url: "https://example.com/"
  placeholder_image_url: "https://example.com/pixel.png"
`},
		{"file driver without visits_path", `
http:
  listen_addr: ":8080"
storage:
  driver: "file"
geo:
  provider: "off"
tracking:
  default_target_url: "https://example.com/"
  placeholder_image_url: "https://example.com/pixel.png"
`},
		{"default target is not a url", `
http:
  listen_addr: ":8080"
storage:
  driver: "file"
  visits_path: "data/visits.json"
geo:
  provider: "off"
tracking:
  default_target_url: "not a url"
  placeholder_image_url: "https://example.com/pixel.png"
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			writeConf(t, tc.yaml)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
