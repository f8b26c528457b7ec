package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/neurorouter"

	"github.com/perimetra/scanward/internal/advisor"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/policy"
)

// Reconcile merges the policy ceiling, the advisor recommendation (if any),
// and fallback rules into the final decision.
//
// The one property every branch preserves: the final action is never more
// aggressive than the ceiling. manual_review is exempt (it requests a
// human, not a scan) and can only originate from a valid advisor answer.
//
// parsed is nil when the advisor was not consulted, failed, or produced
// unusable output; cause carries the failure for the reasoning text.
func Reconcile(dc *model.DecisionContext, ev policy.Evaluation, parsed *advisor.ParsedDecision, cause error) model.Decision {
	now := time.Now().UTC()

	if parsed == nil {
		return fallbackDecision(ev, cause, now)
	}

	switch parsed.Action {
	case model.ActionManualReview:
		// Policy-exempt: passes through untouched even on unmet preconditions.
		return model.Decision{
			NextAction: model.ActionManualReview,
			Reasoning:  advisorReasoning(parsed),
			Source:     model.SourceAdvisor,
			Confidence: parsed.Confidence,
			Ceiling:    ev.Ceiling,
			DecidedAt:  now,
		}

	case model.ActionEscalate:
		return reconcileEscalate(dc, ev, parsed, now)

	default:
		if policy.Exceeds(parsed.Action, ev.Ceiling) {
			return clampDecision(ev, parsed, now)
		}
		return model.Decision{
			NextAction: parsed.Action,
			Reasoning:  advisorReasoning(parsed),
			Source:     model.SourceAdvisor,
			Confidence: parsed.Confidence,
			Ceiling:    ev.Ceiling,
			DecidedAt:  now,
		}
	}
}

// reconcileEscalate resolves an escalate recommendation against the node's
// last recorded level and the ceiling. The implied target saturates at the
// top tier, so escalating from the deepest level still compares as
// scan_ferocious against the ceiling. Escalation passes through only when
// the target stays within policy and no precondition is unmet.
func reconcileEscalate(dc *model.DecisionContext, ev policy.Evaluation, parsed *advisor.ParsedDecision, now time.Time) model.Decision {
	target := model.TierForLevel(dc.Node.LastScanLevel + 1)

	switch {
	case !dc.Policy.AutoEscalationEnabled:
		return model.Decision{
			NextAction: ev.Ceiling,
			Reasoning: fmt.Sprintf("advisor recommended escalate but auto escalation is disabled by policy; holding at %s. advisor reasoning: %s",
				ev.Ceiling, advisorReasoning(parsed)),
			Source:     model.SourcePolicyFallback,
			Confidence: parsed.Confidence,
			Ceiling:    ev.Ceiling,
			DecidedAt:  now,
		}
	case len(ev.Unmet) > 0 || policy.Exceeds(target, ev.Ceiling):
		return model.Decision{
			NextAction: ev.Ceiling,
			Reasoning: fmt.Sprintf("advisor recommended escalate (to %s) beyond what policy permits%s; downgraded to %s. advisor reasoning: %s",
				target, unmetSuffix(ev), ev.Ceiling, advisorReasoning(parsed)),
			Source:     model.SourcePolicyFallback,
			Confidence: parsed.Confidence,
			Ceiling:    ev.Ceiling,
			DecidedAt:  now,
		}
	}

	return model.Decision{
		NextAction: model.ActionEscalate,
		Reasoning:  advisorReasoning(parsed),
		Source:     model.SourceAdvisor,
		Confidence: parsed.Confidence,
		Ceiling:    ev.Ceiling,
		DecidedAt:  now,
	}
}

// clampDecision reduces an over-aggressive recommendation to the ceiling,
// preserving the advisor's original reasoning as context.
func clampDecision(ev policy.Evaluation, parsed *advisor.ParsedDecision, now time.Time) model.Decision {
	var reasoning string
	if len(ev.Unmet) > 0 {
		reasoning = fmt.Sprintf("advisor recommended %s but preconditions are unmet (%s); limited to %s. advisor reasoning: %s",
			parsed.Action, strings.Join(ev.Unmet, "; "), ev.Ceiling, advisorReasoning(parsed))
	} else {
		reasoning = fmt.Sprintf("advisor recommended %s above the policy ceiling %s; clamped. advisor reasoning: %s",
			parsed.Action, ev.Ceiling, advisorReasoning(parsed))
	}
	return model.Decision{
		NextAction: ev.Ceiling,
		Reasoning:  reasoning,
		Source:     model.SourcePolicyFallback,
		Confidence: parsed.Confidence,
		Ceiling:    ev.Ceiling,
		DecidedAt:  now,
	}
}

// fallbackDecision applies the ceiling verbatim when no usable advisor
// recommendation exists. The reasoning names the cause: unavailability,
// rate limiting, invalid output, or no advisor configured at all.
func fallbackDecision(ev policy.Evaluation, cause error, now time.Time) model.Decision {
	var reasoning string
	var parseErr *advisor.ParseError
	switch {
	case cause == nil:
		reasoning = fmt.Sprintf("no advisor consulted; applying policy ceiling %s", ev.Ceiling)
	case errors.As(cause, &parseErr):
		reasoning = fmt.Sprintf("%v; applying policy ceiling %s", cause, ev.Ceiling)
	case errors.Is(cause, neurorouter.ErrRateLimited):
		reasoning = fmt.Sprintf("advisor rate limited; applying policy ceiling %s", ev.Ceiling)
	default:
		reasoning = fmt.Sprintf("advisor unavailable (%v); applying policy ceiling %s", cause, ev.Ceiling)
	}
	reasoning += unmetSuffix(ev)

	return model.Decision{
		NextAction: ev.Ceiling,
		Reasoning:  reasoning,
		Source:     model.SourceHardRule,
		Confidence: 1.0,
		Ceiling:    ev.Ceiling,
		DecidedAt:  now,
	}
}

// advisorReasoning returns the advisor's reasoning or a synthesized line,
// so the Decision always carries human-readable reasoning.
func advisorReasoning(parsed *advisor.ParsedDecision) string {
	if parsed.Reasoning != "" {
		return parsed.Reasoning
	}
	return fmt.Sprintf("advisor recommended %s", parsed.Action)
}

func unmetSuffix(ev policy.Evaluation) string {
	if len(ev.Unmet) == 0 {
		return ""
	}
	return "; unmet preconditions: " + strings.Join(ev.Unmet, "; ")
}
