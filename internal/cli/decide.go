package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perimetra/scanward/internal/scan"
)

var (
	decideNode       string
	decideOrg        string
	decideTarget     string
	decideNodeID     string
	decideOrgID      string
	decidePolicy     string
	decideAuditLog   string
	decideFormat     string
	decidePolicyOnly bool
)

func init() {
	rootCmd.AddCommand(decideCmd)
	decideCmd.Flags().StringVar(&decideNode, "node", "", "Path to node JSON file")
	decideCmd.Flags().StringVar(&decideOrg, "org", "", "Path to organisation JSON file")
	decideCmd.Flags().StringVar(&decideTarget, "target", "", "Target host (quick form, instead of --node)")
	decideCmd.Flags().StringVar(&decideNodeID, "node-id", "", "Node ID for the quick form (defaults to the target host)")
	decideCmd.Flags().StringVar(&decideOrgID, "org-id", "", "Organisation ID (quick form, instead of --org)")
	decideCmd.Flags().StringVar(&decidePolicy, "policy", "", "Path to policy YAML (default ~/.scanward/policy.yaml)")
	decideCmd.Flags().StringVar(&decideAuditLog, "audit-log", "", "Path to decision log JSONL file")
	decideCmd.Flags().StringVarP(&decideFormat, "format", "f", "text", "Output format (text|json)")
	decideCmd.Flags().BoolVar(&decidePolicyOnly, "policy-only", false, "Skip the advisor and decide from policy alone")
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Decide the next scan action for a node",
	Long: "Assembles the decision context for a node, computes the policy ceiling,\n" +
		"consults the advisor when one is configured (SCANWARD_API_URL or\n" +
		"GEMINI_API_KEY), and prints the reconciled decision.",
	RunE: runDecide,
}

func runDecide(cmd *cobra.Command, args []string) error {
	node, org, err := loadNodeInputs(decideNode, decideOrg, decideTarget, decideNodeID, decideOrgID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, cfg, log, err := buildEngine(ctx, decidePolicy, decideAuditLog, decidePolicyOnly)
	if err != nil {
		return err
	}
	if log != nil {
		defer log.Close()
	}

	d, err := eng.Decide(ctx, node, org, cfg.Policy)
	if err != nil {
		return err
	}

	in := scan.ForDecision(d, node, d.Ceiling)

	switch decideFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"decision":    d,
			"instruction": in,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Printf("action:     %s\n", d.NextAction)
		fmt.Printf("source:     %s\n", d.Source)
		fmt.Printf("ceiling:    %s\n", d.Ceiling)
		fmt.Printf("confidence: %.2f\n", d.Confidence)
		fmt.Printf("reasoning:  %s\n", d.Reasoning)
		if in.Runnable() {
			fmt.Printf("scan:       level %d on %s\n", in.Level, in.Target)
		}
	}
	return nil
}
