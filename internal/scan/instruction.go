// Package scan translates decisions into concrete scanner invocations.
// The engine decides WHAT to do; this package decides how that maps onto
// the external scanner's level numbers and runs the binary.
package scan

import (
	"fmt"

	"github.com/perimetra/scanward/internal/model"
)

// Instruction is a fully resolved scanner invocation: a target host and a
// numeric scan level. Level 0 means no scan runs (skip or manual review).
type Instruction struct {
	Level  int    `json:"level"`
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

// Runnable reports whether the instruction invokes the scanner at all.
func (i Instruction) Runnable() bool {
	return i.Level > 0
}

// ForDecision resolves a decision into an Instruction. ceiling is the
// evaluated policy ceiling the decision was made under; callers pass the
// decision's own Ceiling so the bound here matches the one the engine
// enforced.
//
// Tiered actions map directly to levels 1-3. Escalate targets one level
// above the node's last recorded scan, bounded below by 1 and above by
// the ceiling tier. skip and manual_review produce a non-runnable
// instruction carrying the decision's reasoning.
func ForDecision(d model.Decision, node model.Node, ceiling model.Action) Instruction {
	switch d.NextAction {
	case model.ActionSkip, model.ActionManualReview:
		return Instruction{Level: 0, Target: node.Host, Reason: d.Reasoning}

	case model.ActionEscalate:
		maxLevel, ok := ceiling.Tier()
		if !ok || maxLevel < 1 {
			return Instruction{Level: 0, Target: node.Host, Reason: "escalation requested but policy ceiling permits no scan"}
		}
		level := node.LastScanLevel + 1
		if level < 1 {
			level = 1
		}
		if level > maxLevel {
			level = maxLevel
		}
		return Instruction{
			Level:  level,
			Target: node.Host,
			Reason: fmt.Sprintf("escalating from level %d", node.LastScanLevel),
		}

	default:
		tier, ok := d.NextAction.Tier()
		if !ok {
			return Instruction{Level: 0, Target: node.Host, Reason: fmt.Sprintf("action %s maps to no scan level", d.NextAction)}
		}
		return Instruction{Level: tier, Target: node.Host, Reason: d.Reasoning}
	}
}
