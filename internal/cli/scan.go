package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perimetra/scanward/internal/scan"
)

var (
	scanNode       string
	scanOrg        string
	scanTarget     string
	scanNodeID     string
	scanOrgID      string
	scanPolicyPath string
	scanAuditLog   string
	scanBinary     string
	scanDryRun     bool
	scanPolicyOnly bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanNode, "node", "", "Path to node JSON file")
	scanCmd.Flags().StringVar(&scanOrg, "org", "", "Path to organisation JSON file")
	scanCmd.Flags().StringVar(&scanTarget, "target", "", "Target host (quick form, instead of --node)")
	scanCmd.Flags().StringVar(&scanNodeID, "node-id", "", "Node ID for the quick form (defaults to the target host)")
	scanCmd.Flags().StringVar(&scanOrgID, "org-id", "", "Organisation ID (quick form, instead of --org)")
	scanCmd.Flags().StringVar(&scanPolicyPath, "policy", "", "Path to policy YAML (default ~/.scanward/policy.yaml)")
	scanCmd.Flags().StringVar(&scanAuditLog, "audit-log", "", "Path to decision log JSONL file")
	scanCmd.Flags().StringVar(&scanBinary, "binary", "", "Scanner binary to invoke (default pgdn)")
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "Decide and resolve the instruction without running the scanner")
	scanCmd.Flags().BoolVar(&scanPolicyOnly, "policy-only", false, "Skip the advisor and decide from policy alone")
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Decide and run the scanner for a node",
	Long: "Runs the full pipeline: decide the next action, resolve it to a scanner\n" +
		"invocation, and execute the scanner binary. A skip or manual_review\n" +
		"decision runs nothing and exits 0.",
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	node, org, err := loadNodeInputs(scanNode, scanOrg, scanTarget, scanNodeID, scanOrgID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, cfg, log, err := buildEngine(ctx, scanPolicyPath, scanAuditLog, scanPolicyOnly)
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

	fmt.Fprintf(os.Stderr, "scanward: %s (%s): %s\n", d.NextAction, d.Source, d.Reasoning)

	if !in.Runnable() {
		fmt.Fprintln(os.Stderr, "scanward: no scan to run")
		return nil
	}
	if scanDryRun {
		fmt.Fprintf(os.Stderr, "scanward: dry run, would scan %s at level %d\n", in.Target, in.Level)
		return nil
	}

	runner := scan.NewExecRunner(scanBinary)
	out, err := runner.Run(ctx, in)
	if len(out) > 0 {
		os.Stdout.Write(out)
	}
	return err
}
