package policy

import (
	"fmt"

	"github.com/perimetra/scanward/internal/model"
)

// MaxEscalation parses the policy's max_escalation field into a tiered action.
// An engine must reject unrecognized tiers rather than silently defaulting.
func MaxEscalation(p model.ScanPolicy) (model.Action, error) {
	a, ok := model.ParseAction(p.MaxEscalation)
	if !ok || !a.IsScanTier() {
		return model.ActionSkip, fmt.Errorf("unrecognized escalation tier %q", p.MaxEscalation)
	}
	return a, nil
}

// Clamp returns the less aggressive of the two tiered actions.
// Both arguments must be tiered; out-of-band actions are the reconciler's job.
func Clamp(a, ceiling model.Action) model.Action {
	at, aok := a.Tier()
	ct, cok := ceiling.Tier()
	if !aok || !cok {
		return ceiling
	}
	if at <= ct {
		return a
	}
	return ceiling
}

// Exceeds reports whether a tiered action is more aggressive than the ceiling.
func Exceeds(a, ceiling model.Action) bool {
	at, aok := a.Tier()
	ct, cok := ceiling.Tier()
	if !aok || !cok {
		return false
	}
	return at > ct
}
