package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/perimetra/scanward/internal/daemon"
)

var (
	daemonInbox      string
	daemonOutbox     string
	daemonState      string
	daemonPolicyPath string
	daemonAuditLog   string
	daemonPoll       bool
	daemonPollEvery  time.Duration
	daemonPolicyOnly bool
)

func init() {
	rootCmd.AddCommand(daemonCmd)
	defaults := daemon.DefaultDirConfig()
	daemonCmd.Flags().StringVar(&daemonInbox, "inbox", defaults.Inbox, "Directory watched for decision job files")
	daemonCmd.Flags().StringVar(&daemonOutbox, "outbox", defaults.Outbox, "Directory for result files")
	daemonCmd.Flags().StringVar(&daemonState, "state", defaults.State, "Directory for processing state and the pid lock")
	daemonCmd.Flags().StringVar(&daemonPolicyPath, "policy", "", "Path to policy YAML (default ~/.scanward/policy.yaml)")
	daemonCmd.Flags().StringVar(&daemonAuditLog, "audit-log", "", "Path to decision log JSONL file")
	daemonCmd.Flags().BoolVar(&daemonPoll, "poll", false, "Poll the inbox instead of using fsnotify (for NFS)")
	daemonCmd.Flags().DurationVar(&daemonPollEvery, "poll-interval", 0, "Polling interval when --poll is set")
	daemonCmd.Flags().BoolVar(&daemonPolicyOnly, "policy-only", false, "Skip the advisor and decide from policy alone")
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the inbox/outbox decision service",
	Long: "Watches the inbox directory for decision job files, runs each through the\n" +
		"engine, and writes results to the outbox. Survives advisor outages: jobs\n" +
		"still complete with the deterministic policy fallback.",
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, cfg, log, err := buildEngine(ctx, daemonPolicyPath, daemonAuditLog, daemonPolicyOnly)
	if err != nil {
		return err
	}
	if log != nil {
		defer log.Close()
	}

	d, err := daemon.New(daemon.Config{
		Dirs: daemon.DirConfig{
			Inbox:  daemonInbox,
			Outbox: daemonOutbox,
			State:  daemonState,
		},
		Engine:       eng,
		Policy:       cfg.Policy,
		PollMode:     daemonPoll,
		PollInterval: daemonPollEvery,
	})
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down daemon...")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "scanward daemon watching %s\n", daemonInbox)
	return d.Run(ctx)
}
