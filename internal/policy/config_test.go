package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/perimetra/scanward/internal/model"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Policy.MaxEscalation != string(model.ActionScanMedium) {
		t.Errorf("expected scan_medium default, got %s", cfg.Policy.MaxEscalation)
	}
	if !cfg.Policy.RequireDiscovery {
		t.Error("expected require_discovery default true")
	}
	if cfg.Policy.ScanCooldownHours != 24 {
		t.Errorf("expected 24h cooldown default, got %d", cfg.Policy.ScanCooldownHours)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "scan_policy:\n  max_escalation: scan_ferocious\n  scan_cooldown_hours: 6\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Policy.MaxEscalation != "scan_ferocious" {
		t.Errorf("expected scan_ferocious override, got %s", cfg.Policy.MaxEscalation)
	}
	if cfg.Policy.ScanCooldownHours != 6 {
		t.Errorf("expected cooldown override 6, got %d", cfg.Policy.ScanCooldownHours)
	}
	// Unspecified fields keep defaults.
	if cfg.Policy.MaxDiscoveryAttempts != 3 {
		t.Errorf("expected default max_discovery_attempts 3, got %d", cfg.Policy.MaxDiscoveryAttempts)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("scan_policy: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadConfigWithHashChangesOnEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte("scan_policy:\n  max_escalation: scan_light\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, hash1, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("scan_policy:\n  max_escalation: scan_medium\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, hash2, err := LoadConfigWithHash(path)
	if err != nil {
		t.Fatal(err)
	}

	if hash1 == hash2 {
		t.Error("expected hash to change when the file changes")
	}
}

func TestDefaultConfigYAMLParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(DefaultConfigYAML()), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("generated default YAML should parse: %v", err)
	}
	if cfg.Policy.MaxEscalation != string(model.ActionScanMedium) {
		t.Errorf("expected scan_medium in generated YAML, got %s", cfg.Policy.MaxEscalation)
	}
}
