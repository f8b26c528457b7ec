package model

import "strings"

// Action is the closed vocabulary of next actions the engine can emit.
// Any token outside this set is a validation failure, never a new action.
type Action string

const (
	ActionSkip          Action = "skip"
	ActionScanLight     Action = "scan_light"
	ActionScanMedium    Action = "scan_medium"
	ActionScanFerocious Action = "scan_ferocious"
	ActionEscalate      Action = "escalate"
	ActionManualReview  Action = "manual_review"
)

// scanTiers orders the scan intensities. Higher tier = more aggressive.
// escalate and manual_review are out-of-band outcomes with no tier.
var scanTiers = map[Action]int{
	ActionSkip:          0,
	ActionScanLight:     1,
	ActionScanMedium:    2,
	ActionScanFerocious: 3,
}

// Actions lists the full vocabulary, tiered actions first in ascending order.
func Actions() []Action {
	return []Action{
		ActionSkip,
		ActionScanLight,
		ActionScanMedium,
		ActionScanFerocious,
		ActionEscalate,
		ActionManualReview,
	}
}

// Tier returns the scan intensity tier for a tiered action.
// ok is false for escalate and manual_review.
func (a Action) Tier() (int, bool) {
	t, ok := scanTiers[a]
	return t, ok
}

// IsScanTier returns true for skip and the three scan intensities.
func (a Action) IsScanTier() bool {
	_, ok := scanTiers[a]
	return ok
}

// TierForLevel maps a scan engine level (1..3) back to its action.
// Levels at or below 0 map to skip; levels above 3 saturate to
// scan_ferocious so a step past the top tier still reads as the most
// aggressive action and stays subject to ceiling clamping, never as a
// skip that would slip under it.
func TierForLevel(level int) Action {
	switch {
	case level <= 0:
		return ActionSkip
	case level == 1:
		return ActionScanLight
	case level == 2:
		return ActionScanMedium
	default:
		return ActionScanFerocious
	}
}

// ParseAction matches a token against the vocabulary, case-insensitively.
// Surrounding whitespace is tolerated; anything else is a non-match.
func ParseAction(token string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(token)))
	switch a {
	case ActionSkip, ActionScanLight, ActionScanMedium, ActionScanFerocious,
		ActionEscalate, ActionManualReview:
		return a, true
	}
	return "", false
}

// Source tags where the final decision came from.
type Source string

const (
	SourceAdvisor        Source = "advisor"         // valid advisor recommendation within policy
	SourcePolicyFallback Source = "policy_fallback" // advisor recommendation clamped to the ceiling
	SourceHardRule       Source = "hard_rule"       // deterministic rule, advisor unused or unusable
)
