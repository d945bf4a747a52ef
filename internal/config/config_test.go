package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	loomerrors "github.com/loomworks/loom/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.AutoFillEnvVars {
		t.Error("auto-fill should default to enabled")
	}
	if cfg.Storage.Dialect != "sqlite" {
		t.Errorf("default dialect = %q, want sqlite", cfg.Storage.Dialect)
	}
	if cfg.Server.Addr == "" {
		t.Error("default server addr should be set")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !cfg.AutoFillEnvVars {
		t.Error("missing file should yield defaults")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LoomDir, ConfigFileName)

	cfg := Default()
	cfg.AutoFillEnvVars = false
	cfg.Server.Addr = ":9999"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.AutoFillEnvVars {
		t.Error("AutoFillEnvVars should round-trip as false")
	}
	if loaded.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want :9999", loaded.Server.Addr)
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":4000\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("Addr = %q, want :4000", cfg.Server.Addr)
	}
	if cfg.Storage.Dialect != "sqlite" {
		t.Error("unset fields should keep defaults")
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dialect = "oracle"
	err := cfg.Validate()
	if !errors.Is(err, &loomerrors.LoomError{Code: loomerrors.CodeConfigInvalid}) {
		t.Errorf("unknown dialect should be CONFIG_INVALID, got %v", err)
	}

	cfg = Default()
	cfg.Storage.Dialect = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("postgres without dsn should be invalid")
	}
	cfg.Storage.DSN = "postgres://localhost/loom"
	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres with dsn should validate: %v", err)
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := Default()
	want := filepath.Join("proj", LoomDir, DatabaseFileName)
	if got := cfg.DatabasePath("proj"); got != want {
		t.Errorf("DatabasePath = %q, want %q", got, want)
	}

	cfg.Storage.DSN = "/tmp/custom.db"
	if got := cfg.DatabasePath("proj"); got != "/tmp/custom.db" {
		t.Errorf("explicit DSN should win, got %q", got)
	}
}
