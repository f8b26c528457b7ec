package audit

// Entry is one line in the hash-chained JSONL decision log.
// All fields are flat scalars (no map[string]any) to guarantee deterministic
// json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp  string  `json:"ts"`
	NodeID     string  `json:"node_id"`
	Host       string  `json:"host"`
	OrgID      string  `json:"org_id"`
	Action     string  `json:"action"`
	Source     string  `json:"source"`
	Ceiling    string  `json:"ceiling"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	PolicyHash string  `json:"policy_hash"`
	PrevHash   string  `json:"prev_hash"`
}
