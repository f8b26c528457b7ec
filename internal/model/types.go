package model

import "time"

// Node is the scan target as known to the calling system.
// The engine only reads it, never mutates it.
type Node struct {
	ID                string            `json:"id"`
	Host              string            `json:"host"`
	Protocol          string            `json:"protocol,omitempty"`
	Status            string            `json:"status,omitempty"` // new, active, failing, offline, unknown
	LastScanLevel     int               `json:"last_scan_level,omitempty"`
	LastScanTime      time.Time         `json:"last_scan_time,omitempty"`
	DiscoveryAttempts int               `json:"discovery_attempts,omitempty"`
	ScanFailures      int               `json:"scan_failures,omitempty"`
	OpenPorts         []int             `json:"open_ports,omitempty"`
	Services          map[string]string `json:"services,omitempty"`
	TrustScore        *float64          `json:"trust_score,omitempty"`
	FindingCount      int               `json:"finding_count,omitempty"`
}

// Discovered reports whether a discovery/fingerprint step has run for the node.
// A node counts as discovered once its protocol has been identified.
func (n *Node) Discovered() bool {
	return n.Protocol != ""
}

// Organisation carries the permissions and restrictions the node belongs to.
// Immutable for the duration of one decision.
type Organisation struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name,omitempty"`
	FerociousEnabled     bool     `json:"ferocious_enabled"`
	BlacklistedHosts     []string `json:"blacklisted_hosts,omitempty"`
	WhitelistedProtocols []string `json:"whitelisted_protocols,omitempty"`
}

// HostBlacklisted reports whether the host must never be scanned for this org.
func (o *Organisation) HostBlacklisted(host string) bool {
	for _, h := range o.BlacklistedHosts {
		if h == host {
			return true
		}
	}
	return false
}

// ProtocolAllowed reports whether the org may scan nodes of the given protocol.
// An empty whitelist allows everything; an unknown protocol is always allowed
// (discovery has to run against something).
func (o *Organisation) ProtocolAllowed(protocol string) bool {
	if len(o.WhitelistedProtocols) == 0 || protocol == "" {
		return true
	}
	for _, p := range o.WhitelistedProtocols {
		if p == protocol {
			return true
		}
	}
	return false
}

// ScanPolicy is the organisation's hard limits on scan aggressiveness.
type ScanPolicy struct {
	MaxEscalation           string  `yaml:"max_escalation" json:"max_escalation"`
	RequireDiscovery        bool    `yaml:"require_discovery" json:"require_discovery"`
	ScanCooldownHours       int     `yaml:"scan_cooldown_hours" json:"scan_cooldown_hours"`
	MaxDiscoveryAttempts    int     `yaml:"max_discovery_attempts" json:"max_discovery_attempts"`
	AutoEscalationEnabled   bool    `yaml:"auto_escalation_enabled" json:"auto_escalation_enabled"`
	TrustThresholdMedium    float64 `yaml:"trust_score_threshold_medium" json:"trust_score_threshold_medium"`
	TrustThresholdFerocious float64 `yaml:"trust_score_threshold_ferocious" json:"trust_score_threshold_ferocious"`
}

// DecisionContext is the immutable snapshot both the policy evaluator and the
// advisor see. Computed once per decision and never mutated after construction.
type DecisionContext struct {
	Node              Node         `json:"node"`
	Organisation      Organisation `json:"organisation"`
	Policy            ScanPolicy   `json:"policy"`
	DaysSinceLastScan float64      `json:"days_since_last_scan"` // -1 when never scanned
	PriorFindings     int          `json:"prior_findings"`
	AssembledAt       time.Time    `json:"assembled_at"`
}

// Decision is the engine's sole externally visible output.
type Decision struct {
	NextAction Action    `json:"next_action"`
	Reasoning  string    `json:"reasoning"`
	Source     Source    `json:"source"`
	Confidence float64   `json:"confidence"`
	// Ceiling is the most aggressive action policy permitted when the
	// decision was made. Anything resolving the decision into scan
	// parameters must bound itself by this, not by the raw policy tier.
	Ceiling   Action    `json:"ceiling"`
	DecidedAt time.Time `json:"decided_at"`
}
