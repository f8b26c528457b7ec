package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/perimetra/scanward/internal/advisor"
	scanmcp "github.com/perimetra/scanward/internal/mcp"
)

var (
	mcpPolicy   string
	mcpAuditLog string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "Path to policy YAML (default ~/.scanward/policy.yaml)")
	mcpCmd.Flags().StringVar(&mcpAuditLog, "audit-log", "", "Path to decision log JSONL file")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs scanward as an MCP (Model Context Protocol) server over stdio.\nExposes the tools: scanward_decide, scanward_check.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := scanmcp.New(ctx, scanmcp.Config{
		PolicyPath:   mcpPolicy,
		AuditLogPath: mcpAuditLog,
		Advisor:      advisor.ConfigFromEnv(),
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer srv.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "scanward MCP server running on stdio")
	return srv.Run(ctx)
}
