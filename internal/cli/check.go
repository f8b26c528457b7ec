package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perimetra/scanward/internal/engine"
	"github.com/perimetra/scanward/internal/policy"
)

var (
	checkNode   string
	checkOrg    string
	checkTarget string
	checkNodeID string
	checkOrgID  string
	checkPolicy string
	checkFormat string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkNode, "node", "", "Path to node JSON file")
	checkCmd.Flags().StringVar(&checkOrg, "org", "", "Path to organisation JSON file")
	checkCmd.Flags().StringVar(&checkTarget, "target", "", "Target host (quick form, instead of --node)")
	checkCmd.Flags().StringVar(&checkNodeID, "node-id", "", "Node ID for the quick form (defaults to the target host)")
	checkCmd.Flags().StringVar(&checkOrgID, "org-id", "", "Organisation ID (quick form, instead of --org)")
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Path to policy YAML (default ~/.scanward/policy.yaml)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Show the policy ceiling for a node without deciding",
	Long: "Computes the most aggressive action policy permits for a node right now,\n" +
		"plus any unmet preconditions. Never consults the advisor.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	node, org, err := loadNodeInputs(checkNode, checkOrg, checkTarget, checkNodeID, checkOrgID)
	if err != nil {
		return err
	}

	cfg, err := policy.LoadConfig(checkPolicy)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	dc, err := engine.Assemble(node, org, cfg.Policy)
	if err != nil {
		return err
	}

	ev := policy.Evaluate(dc)
	if ev.ConfigErr != nil {
		return ev.ConfigErr
	}

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"ceiling": ev.Ceiling,
			"unmet":   ev.Unmet,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Printf("ceiling: %s\n", ev.Ceiling)
		for _, u := range ev.Unmet {
			fmt.Printf("unmet:   %s\n", u)
		}
	}
	return nil
}
