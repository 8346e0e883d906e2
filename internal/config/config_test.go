package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Site.Dir != "html" || cfg.Server.Addr != ":8087" || cfg.Site.FetchTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `site:
  dir: build/html
  fetch_timeout: 3s
server:
  addr: ":9000"
  watch: true
  watch_ignore:
    - theme_*.js
log:
  format: json
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	t.Setenv("DOXNAV_LOG_LEVEL", "debug")

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Site.Dir != "build/html" || cfg.Site.FetchTimeout != 3*time.Second {
		t.Fatalf("unexpected site config %+v", cfg.Site)
	}
	if cfg.Server.Addr != ":9000" || !cfg.Server.Watch || cfg.Server.Debounce != 300*time.Millisecond {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if len(cfg.Server.WatchIgnore) != 1 || cfg.Server.WatchIgnore[0] != "theme_*.js" {
		t.Fatalf("unexpected watch ignore rules %v", cfg.Server.WatchIgnore)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestWatchIgnoreFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DOXNAV_SERVER_WATCH_IGNORE", "theme_*.js,extra/")

	v, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"theme_*.js", "extra/"}
	if !reflect.DeepEqual(cfg.Server.WatchIgnore, want) {
		t.Fatalf("expected watch ignore rules %v, got %v", want, cfg.Server.WatchIgnore)
	}
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Site.BaseURL = "docs/html"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected relative base url to be rejected")
	}
	cfg.Site.BaseURL = "https://example.org/docs/"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected absolute base url to pass: %v", err)
	}

	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected unknown log format to be rejected")
	}
}
