package advisor

import (
	"fmt"
	"strings"

	"github.com/perimetra/scanward/internal/model"
)

const systemPrompt = `You are a network scan orchestration advisor. You receive the state of one node, its organisation's permissions, and the scan policy in force, and must recommend the single next action.

Valid actions:
- skip: do nothing now (cooldown, policy, or nothing to gain)
- scan_light: basic reconnaissance and port scan
- scan_medium: service analysis, vulnerability detection, trust scoring
- scan_ferocious: deep aggressive assessment (requires org permission)
- escalate: scan one level above the node's last scan
- manual_review: flag for human investigation

Return ONLY valid JSON, no markdown fences, no commentary:
{"next_action":"<action>","reasoning":"<one or two sentences>","confidence":<0.0-1.0>}`

// BuildPrompt renders a decision context as the user prompt.
// The serialization is one-way: nothing in the advisor's answer is trusted
// beyond the closed action vocabulary.
func BuildPrompt(dc *model.DecisionContext) string {
	var b strings.Builder

	b.WriteString("Decide the next scanning action for this node.\n\n")

	b.WriteString("Node:\n")
	fmt.Fprintf(&b, "- ID: %s\n", dc.Node.ID)
	fmt.Fprintf(&b, "- Host: %s\n", dc.Node.Host)
	fmt.Fprintf(&b, "- Protocol: %s\n", orUnknown(dc.Node.Protocol))
	fmt.Fprintf(&b, "- Status: %s\n", orUnknown(dc.Node.Status))
	if dc.Node.LastScanTime.IsZero() {
		b.WriteString("- Last scan: never\n")
	} else {
		fmt.Fprintf(&b, "- Last scan: level %d, %.1f days ago\n", dc.Node.LastScanLevel, dc.DaysSinceLastScan)
	}
	fmt.Fprintf(&b, "- Discovery attempts: %d\n", dc.Node.DiscoveryAttempts)
	fmt.Fprintf(&b, "- Consecutive scan failures: %d\n", dc.Node.ScanFailures)
	if len(dc.Node.OpenPorts) > 0 {
		fmt.Fprintf(&b, "- Open ports: %v\n", dc.Node.OpenPorts)
	}
	if len(dc.Node.Services) > 0 {
		fmt.Fprintf(&b, "- Services: %v\n", dc.Node.Services)
	}
	if dc.Node.TrustScore != nil {
		fmt.Fprintf(&b, "- Trust score: %.1f\n", *dc.Node.TrustScore)
	} else {
		b.WriteString("- Trust score: not calculated\n")
	}
	fmt.Fprintf(&b, "- Prior findings: %d\n", dc.PriorFindings)

	b.WriteString("\nOrganisation:\n")
	fmt.Fprintf(&b, "- ID: %s\n", dc.Organisation.ID)
	fmt.Fprintf(&b, "- Ferocious scans enabled: %t\n", dc.Organisation.FerociousEnabled)

	b.WriteString("\nScan policy:\n")
	fmt.Fprintf(&b, "- Max escalation: %s\n", dc.Policy.MaxEscalation)
	fmt.Fprintf(&b, "- Require discovery: %t\n", dc.Policy.RequireDiscovery)
	fmt.Fprintf(&b, "- Scan cooldown hours: %d\n", dc.Policy.ScanCooldownHours)
	fmt.Fprintf(&b, "- Max discovery attempts: %d\n", dc.Policy.MaxDiscoveryAttempts)
	fmt.Fprintf(&b, "- Auto escalation enabled: %t\n", dc.Policy.AutoEscalationEnabled)
	fmt.Fprintf(&b, "- Trust thresholds: medium=%.1f, ferocious=%.1f\n",
		dc.Policy.TrustThresholdMedium, dc.Policy.TrustThresholdFerocious)

	b.WriteString(`
Guidelines:
- New nodes with an unknown protocol warrant only light scanning until discovered.
- Low trust scores may warrant escalation, if permitted.
- Suggest manual_review when discovery keeps failing past the attempt budget.
- Respect the cooldown between scans.
- Never recommend scan_ferocious unless the organisation permits it.
`)

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
