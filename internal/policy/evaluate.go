package policy

import (
	"fmt"
	"time"

	"github.com/perimetra/scanward/internal/model"
)

// Evaluation is the deterministic half of a decision: the most aggressive
// action policy permits right now, plus any hard preconditions not yet met.
type Evaluation struct {
	Ceiling   model.Action
	Unmet     []string
	ConfigErr *model.ConfigError
}

// Evaluate computes the policy ceiling for a decision context.
//
// Cap order (each cap lowers the ceiling, never raises it):
//  1. max_escalation tier: unrecognized tier is a configuration error
//     and the ceiling conservatively drops to skip
//  2. ferocious gate: orgs without ferocious_enabled cap at scan_medium
//  3. require_discovery: undiscovered nodes cap at scan_light
//  4. scan cooldown: nodes scanned within the window cap at skip
//
// Pure and total: never fails, reads nothing but the context.
func Evaluate(dc *model.DecisionContext) Evaluation {
	ceiling, err := MaxEscalation(dc.Policy)
	if err != nil {
		return Evaluation{
			Ceiling: model.ActionSkip,
			ConfigErr: &model.ConfigError{
				Field:  "policy.max_escalation",
				Detail: err.Error(),
			},
		}
	}

	ev := Evaluation{Ceiling: ceiling}

	if !dc.Organisation.FerociousEnabled {
		ev.Ceiling = Clamp(ev.Ceiling, model.ActionScanMedium)
	}

	if dc.Policy.RequireDiscovery && !dc.Node.Discovered() {
		ev.Ceiling = Clamp(ev.Ceiling, model.ActionScanLight)
		ev.Unmet = append(ev.Unmet,
			fmt.Sprintf("discovery required before escalation: node %s has no recorded discovery", dc.Node.ID))
	}

	if cooldown := cooldownRemaining(dc); cooldown > 0 {
		ev.Ceiling = model.ActionSkip
		ev.Unmet = append(ev.Unmet,
			fmt.Sprintf("scan cooldown active: %s remaining", cooldown.Round(time.Minute)))
	}

	return ev
}

// cooldownRemaining returns how long until the node may be scanned again,
// or zero when no cooldown applies.
func cooldownRemaining(dc *model.DecisionContext) time.Duration {
	if dc.Policy.ScanCooldownHours <= 0 || dc.Node.LastScanTime.IsZero() {
		return 0
	}
	window := time.Duration(dc.Policy.ScanCooldownHours) * time.Hour
	elapsed := dc.AssembledAt.Sub(dc.Node.LastScanTime)
	if elapsed >= window {
		return 0
	}
	return window - elapsed
}
