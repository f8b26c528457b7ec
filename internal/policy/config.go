package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/perimetra/scanward/internal/alert"
	"github.com/perimetra/scanward/internal/model"
)

// Config holds all configurable parameters for the decision engine.
type Config struct {
	Policy model.ScanPolicy `yaml:"scan_policy"`
	Alerts []alert.Config   `yaml:"alerts"`
}

// DefaultConfig returns the built-in policy configuration.
// Medium ceiling, discovery required, 24h cooldown between scans of a node.
func DefaultConfig() *Config {
	return &Config{
		Policy: model.ScanPolicy{
			MaxEscalation:           string(model.ActionScanMedium),
			RequireDiscovery:        true,
			ScanCooldownHours:       24,
			MaxDiscoveryAttempts:    3,
			AutoEscalationEnabled:   true,
			TrustThresholdMedium:    70.0,
			TrustThresholdFerocious: 50.0,
		},
	}
}

// LoadConfig loads policy configuration from a YAML file.
// Empty path falls back to ~/.scanward/policy.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads policy configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk.
// When no file exists (defaults used), the hash is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		path = filepath.Join(home, ".scanward", "policy.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return DefaultConfig(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}

	return cfg, hash, nil
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# scanward policy configuration
# Generated by: scanward init-policy
#
# Ceiling computation order (cannot be changed):
#   1. max_escalation tier
#   2. organisation ferocious gate
#   3. require_discovery cap -> scan_light
#   4. scan cooldown -> skip
#
# The final action never exceeds the ceiling this file produces,
# no matter what the advisor recommends. manual_review is exempt:
# a request for human review is never more aggressive than a scan.

scan_policy:
  # Most aggressive tier policy permits: skip | scan_light | scan_medium | scan_ferocious.
  # Unrecognized tiers are a configuration error, not a silent default.
  max_escalation: scan_medium

  # Require a discovery/fingerprint record before escalating past scan_light.
  require_discovery: true

  # Hours between scans of the same node. 0 disables the cooldown.
  scan_cooldown_hours: 24

  # Discovery attempts before the advisor is told to suggest manual review.
  max_discovery_attempts: 3

  # Allow the advisor to recommend "escalate" (one tier above the last scan).
  auto_escalation_enabled: true

  # Trust-score guidance surfaced to the advisor (not hard limits).
  trust_score_threshold_medium: 70.0
  trust_score_threshold_ferocious: 50.0

# Webhook alerts. Events match the decision action or the event type
# (manual_review, advisor_clamped).
# alerts:
#   - url: https://hooks.slack.com/services/T000/B000/XXXX
#     format: slack
#     events: ["manual_review", "advisor_clamped"]
`
}
