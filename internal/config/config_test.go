package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: billing.db\n")

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.Addr != ":8317" {
		t.Fatalf("addr = %q, want :8317", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Log.MaxSizeMB != 100 || cfg.Log.MaxBackups != 5 || cfg.Log.MaxAgeDays != 30 {
		t.Fatalf("rotation defaults not applied: %+v", cfg.Log)
	}
	if cfg.Database.DSN != "billing.db" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	path := writeConfig(t, "server:\n  addr: \":9000\"\n")

	if _, errLoad := Load(path); errLoad == nil {
		t.Fatal("expected missing dsn to fail")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "database: [not a map\n")

	if _, errLoad := Load(path); errLoad == nil {
		t.Fatal("expected parse error")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath(" explicit.yaml "); got != "explicit.yaml" {
		t.Fatalf("explicit path = %q", got)
	}

	t.Setenv("CHATMETER_CONFIG", "/etc/chatmeter/config.yaml")
	if got := ResolveConfigPath(""); got != "/etc/chatmeter/config.yaml" {
		t.Fatalf("env path = %q", got)
	}

	t.Setenv("CHATMETER_CONFIG", "")
	if got := ResolveConfigPath(""); got != "config.yaml" {
		t.Fatalf("default path = %q", got)
	}
}
