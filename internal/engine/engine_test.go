package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/perimetra/scanward/internal/advisor"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/scan"
)

// stubGateway returns a canned response without any network traffic.
type stubGateway struct {
	raw string
	err error
}

func (s *stubGateway) Consult(ctx context.Context, dc *model.DecisionContext, timeout time.Duration) advisor.Response {
	return advisor.Response{Raw: s.raw, Err: s.err}
}

func ferociousPolicy() model.ScanPolicy {
	return model.ScanPolicy{
		MaxEscalation:         "scan_ferocious",
		AutoEscalationEnabled: true,
	}
}

func TestDecidePolicyOnly(t *testing.T) {
	eng := New(Config{})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", FerociousEnabled: true}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction != model.ActionScanFerocious {
		t.Errorf("expected ceiling scan_ferocious, got %s", d.NextAction)
	}
	if d.Source != model.SourceHardRule {
		t.Errorf("expected hard_rule source, got %s", d.Source)
	}
}

func TestDecideAdvisorRecommendationAccepted(t *testing.T) {
	gw := &stubGateway{raw: `{"next_action":"scan_light","reasoning":"fresh node","confidence":0.8}`}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", FerociousEnabled: true}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction != model.ActionScanLight {
		t.Errorf("expected scan_light, got %s", d.NextAction)
	}
	if d.Source != model.SourceAdvisor {
		t.Errorf("expected advisor source, got %s", d.Source)
	}
}

func TestDecideFerociousNeverGrantedWithoutOrgPermission(t *testing.T) {
	gw := &stubGateway{raw: `{"next_action":"scan_ferocious","reasoning":"hit it hard","confidence":0.99}`}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", FerociousEnabled: false}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction == model.ActionScanFerocious {
		t.Fatal("ferocious scan granted to an org without permission")
	}
	if d.NextAction != model.ActionScanMedium {
		t.Errorf("expected clamp to scan_medium, got %s", d.NextAction)
	}
	if d.Source != model.SourcePolicyFallback {
		t.Errorf("expected policy_fallback source, got %s", d.Source)
	}
}

func TestDecideEscalateFromDeepestLevelHonoursFerociousGate(t *testing.T) {
	gw := &stubGateway{raw: `{"next_action":"escalate","reasoning":"three new open ports","confidence":0.9}`}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui", LastScanLevel: 3}
	org := model.Organisation{ID: "org-1", FerociousEnabled: false}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction != model.ActionScanMedium {
		t.Errorf("expected downgrade to scan_medium, got %s", d.NextAction)
	}
	if d.Source != model.SourcePolicyFallback {
		t.Errorf("expected policy_fallback source, got %s", d.Source)
	}
	if d.Ceiling != model.ActionScanMedium {
		t.Errorf("expected decision ceiling scan_medium, got %s", d.Ceiling)
	}

	in := scan.ForDecision(d, node, d.Ceiling)
	if in.Level != 2 {
		t.Errorf("expected scan level 2 with ferocious disabled, got %d", in.Level)
	}
}

func TestDecideAdvisorFailureDegradesToCeiling(t *testing.T) {
	gw := &stubGateway{err: errors.New("openai: advisor request failed: timeout")}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", FerociousEnabled: true}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.Source != model.SourceHardRule {
		t.Errorf("expected hard_rule source on advisor failure, got %s", d.Source)
	}
	if d.NextAction != model.ActionScanFerocious {
		t.Errorf("expected ceiling, got %s", d.NextAction)
	}
}

func TestDecideUnparsableAdvisorOutputDegrades(t *testing.T) {
	gw := &stubGateway{raw: "either skip or scan_medium, hard to say"}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", FerociousEnabled: true}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.Source != model.SourceHardRule {
		t.Errorf("expected hard_rule source on unparsable output, got %s", d.Source)
	}
	if !strings.Contains(d.Reasoning, "rejected") {
		t.Errorf("expected rejection reasoning, got %q", d.Reasoning)
	}
}

func TestDecideBlacklistedHostSkipsWithoutAdvisor(t *testing.T) {
	gw := &stubGateway{raw: `{"next_action":"scan_ferocious"}`}
	eng := New(Config{Gateway: gw})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "sui"}
	org := model.Organisation{ID: "org-1", BlacklistedHosts: []string{"10.0.0.5"}}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction != model.ActionSkip {
		t.Errorf("expected skip for blacklisted host, got %s", d.NextAction)
	}
	if d.Source != model.SourceHardRule {
		t.Errorf("expected hard_rule source, got %s", d.Source)
	}
	if !strings.Contains(d.Reasoning, "blacklisted") {
		t.Errorf("expected blacklist reasoning, got %q", d.Reasoning)
	}
}

func TestDecideProtocolNotWhitelisted(t *testing.T) {
	eng := New(Config{})
	node := model.Node{ID: "n1", Host: "10.0.0.5", Protocol: "filecoin"}
	org := model.Organisation{ID: "org-1", WhitelistedProtocols: []string{"sui"}}

	d, err := eng.Decide(context.Background(), node, org, ferociousPolicy())
	if err != nil {
		t.Fatal(err)
	}
	if d.NextAction != model.ActionSkip {
		t.Errorf("expected skip for non-whitelisted protocol, got %s", d.NextAction)
	}
}

func TestDecideConfigErrorPropagates(t *testing.T) {
	eng := New(Config{})
	node := model.Node{ID: "n1", Host: "10.0.0.5"}
	org := model.Organisation{ID: "org-1"}
	pol := model.ScanPolicy{MaxEscalation: "scan_brutal"}

	_, err := eng.Decide(context.Background(), node, org, pol)

	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError for unknown tier, got %v", err)
	}
}
