package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Database.DBName != "storeadmin" {
		t.Fatalf("expected default database name, got %q", cfg.Database.DBName)
	}
	if cfg.Lifecycle.StrictDestroy {
		t.Fatalf("expected lenient destroy by default")
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		t.Fatalf("expected default allowed origins")
	}
}

func TestLoad_ConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  addr: ":9090"
lifecycle:
  strict_destroy: true
database:
  dbname: storeadmin_test
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if !cfg.Lifecycle.StrictDestroy {
		t.Fatalf("expected strict destroy enabled from config file")
	}
	if cfg.Database.DBName != "storeadmin_test" {
		t.Fatalf("expected overridden database name, got %q", cfg.Database.DBName)
	}
}
