package alert

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack"
	Events  []string          `yaml:"events"  json:"events"` // ["manual_review", "advisor_clamped"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp  string  `json:"timestamp"`
	NodeID     string  `json:"node_id"`
	Host       string  `json:"host"`
	OrgID      string  `json:"org_id"`
	Action     string  `json:"action"`
	Source     string  `json:"source"`
	Ceiling    string  `json:"ceiling"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	PolicyHash string  `json:"policy_hash"`
	Type       string  `json:"type,omitempty"` // "manual_review", "advisor_clamped"
}
