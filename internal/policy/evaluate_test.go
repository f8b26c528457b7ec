package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/perimetra/scanward/internal/model"
)

func baseContext() *model.DecisionContext {
	return &model.DecisionContext{
		Node:         model.Node{ID: "node-1", Host: "10.0.0.5", Protocol: "sui"},
		Organisation: model.Organisation{ID: "org-1", FerociousEnabled: true},
		Policy: model.ScanPolicy{
			MaxEscalation:         "scan_ferocious",
			RequireDiscovery:      true,
			ScanCooldownHours:     24,
			AutoEscalationEnabled: true,
		},
		DaysSinceLastScan: -1,
		AssembledAt:       time.Now().UTC(),
	}
}

func TestCeilingIsMaxEscalation(t *testing.T) {
	dc := baseContext()

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanFerocious {
		t.Errorf("expected scan_ferocious ceiling, got %s", ev.Ceiling)
	}
	if len(ev.Unmet) != 0 {
		t.Errorf("expected no unmet preconditions, got %v", ev.Unmet)
	}
}

func TestFerociousGateCapsAtMedium(t *testing.T) {
	dc := baseContext()
	dc.Organisation.FerociousEnabled = false

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanMedium {
		t.Errorf("expected scan_medium for org without ferocious, got %s", ev.Ceiling)
	}
}

func TestUndiscoveredNodeCapsAtLight(t *testing.T) {
	dc := baseContext()
	dc.Node.Protocol = ""

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanLight {
		t.Errorf("expected scan_light for undiscovered node, got %s", ev.Ceiling)
	}
	if len(ev.Unmet) != 1 || !strings.Contains(ev.Unmet[0], "discovery required") {
		t.Errorf("expected discovery precondition, got %v", ev.Unmet)
	}
}

func TestDiscoveryNotRequiredWhenPolicyDisablesIt(t *testing.T) {
	dc := baseContext()
	dc.Node.Protocol = ""
	dc.Policy.RequireDiscovery = false

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanFerocious {
		t.Errorf("expected full ceiling without discovery requirement, got %s", ev.Ceiling)
	}
}

func TestCooldownForcesSkip(t *testing.T) {
	dc := baseContext()
	dc.Node.LastScanTime = dc.AssembledAt.Add(-2 * time.Hour)

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionSkip {
		t.Errorf("expected skip during cooldown, got %s", ev.Ceiling)
	}
	if len(ev.Unmet) != 1 || !strings.Contains(ev.Unmet[0], "cooldown") {
		t.Errorf("expected cooldown precondition, got %v", ev.Unmet)
	}
}

func TestCooldownExpired(t *testing.T) {
	dc := baseContext()
	dc.Node.LastScanTime = dc.AssembledAt.Add(-25 * time.Hour)

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanFerocious {
		t.Errorf("expected full ceiling after cooldown, got %s", ev.Ceiling)
	}
}

func TestZeroCooldownDisablesWindow(t *testing.T) {
	dc := baseContext()
	dc.Policy.ScanCooldownHours = 0
	dc.Node.LastScanTime = dc.AssembledAt.Add(-time.Minute)

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanFerocious {
		t.Errorf("expected no cooldown with zero window, got %s", ev.Ceiling)
	}
}

func TestUnknownTierIsConfigError(t *testing.T) {
	dc := baseContext()
	dc.Policy.MaxEscalation = "scan_brutal"

	ev := Evaluate(dc)

	if ev.ConfigErr == nil {
		t.Fatal("expected configuration error for unknown tier")
	}
	if ev.Ceiling != model.ActionSkip {
		t.Errorf("expected skip ceiling on configuration error, got %s", ev.Ceiling)
	}
	if ev.ConfigErr.Field != "policy.max_escalation" {
		t.Errorf("expected policy.max_escalation field, got %s", ev.ConfigErr.Field)
	}
}

func TestCapsCompose(t *testing.T) {
	// Undiscovered node, org without ferocious: the lowest cap wins.
	dc := baseContext()
	dc.Node.Protocol = ""
	dc.Organisation.FerociousEnabled = false

	ev := Evaluate(dc)

	if ev.Ceiling != model.ActionScanLight {
		t.Errorf("expected scan_light from composed caps, got %s", ev.Ceiling)
	}
}
