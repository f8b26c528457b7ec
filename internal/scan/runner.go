package scan

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// defaultBinary is the external scanner invoked when none is configured.
const defaultBinary = "pgdn"

// Runner executes a resolved scan instruction.
type Runner interface {
	Run(ctx context.Context, in Instruction) ([]byte, error)
}

// ExecRunner shells out to the scanner binary:
//
//	<binary> scan --target <host> --scan-level <n>
type ExecRunner struct {
	Binary string
}

func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = defaultBinary
	}
	return &ExecRunner{Binary: binary}
}

// Run executes the scanner and returns its combined output. A non-runnable
// instruction is an error: callers gate on Runnable() first.
func (r *ExecRunner) Run(ctx context.Context, in Instruction) ([]byte, error) {
	if !in.Runnable() {
		return nil, fmt.Errorf("scan: instruction for %s is not runnable: %s", in.Target, in.Reason)
	}
	if in.Target == "" {
		return nil, fmt.Errorf("scan: instruction has no target host")
	}

	args := []string{"scan", "--target", in.Target, "--scan-level", strconv.Itoa(in.Level)}
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("scan: %s level %d on %s: %w", r.Binary, in.Level, in.Target, err)
	}
	return out, nil
}
