package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL || cfg.Timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PrettyJSON == nil || !*cfg.PrettyJSON || cfg.Color == nil || !*cfg.Color {
		t.Fatalf("expected prettyJSON and color on by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	content := "baseURL: http://example.test\ntimeout: 3s\nprettyJSON: false\ncolor: false\nhistoryFile: /tmp/h\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != "http://example.test" || cfg.Timeout != 3*time.Second || cfg.HistoryFile != "/tmp/h" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if *cfg.PrettyJSON || *cfg.Color {
		t.Fatalf("expected explicit false values to survive defaults")
	}
	if cfg.StatePath != DefaultStatePath {
		t.Fatalf("expected default state path, got %s", cfg.StatePath)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte("baseURL: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
