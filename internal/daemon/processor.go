package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/perimetra/scanward/internal/engine"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/scan"
)

// ProcessorConfig holds runtime configuration for job processing.
type ProcessorConfig struct {
	Dirs   DirConfig
	Engine *engine.Engine
	Policy model.ScanPolicy // default policy for jobs without an override
}

// Processor handles job lifecycle transitions.
type Processor struct {
	cfg ProcessorConfig
}

// NewProcessor creates a processor with the given configuration.
func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{cfg: cfg}
}

// Process handles a single job file through its full lifecycle:
// read → validate → move to processing → decide → write result to outbox.
func (p *Processor) Process(ctx context.Context, jobPath string) error {
	// Structural symlink defense: reject symlinks before reading, so an
	// attacker cannot point inbox files at arbitrary filesystem paths.
	fi, err := os.Lstat(jobPath)
	if err != nil {
		return fmt.Errorf("stat job file: %w", err)
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("rejected symlink: %s", filepath.Base(jobPath))
	}

	data, err := os.ReadFile(jobPath)
	if err != nil {
		return fmt.Errorf("read job file: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return p.writeFailedResult(filepath.Base(jobPath), fmt.Sprintf("invalid JSON: %v", err))
	}

	if err := ValidateJob(&job); err != nil {
		return p.writeFailedResult(job.ID, fmt.Sprintf("validation failed: %v", err))
	}

	// Move to processing state. Uses moveFile to handle systemd bind mounts (EXDEV).
	processingPath := filepath.Join(p.cfg.Dirs.ProcessingDir(), job.ID+".json")
	if err := moveFile(jobPath, processingPath); err != nil {
		return fmt.Errorf("move to processing: %w", err)
	}

	result := p.decide(ctx, &job)

	if err := p.writeResult(result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	_ = os.Remove(processingPath)
	return nil
}

// decide runs the job through the engine and resolves the scan instruction.
func (p *Processor) decide(ctx context.Context, job *Job) *Result {
	pol := p.cfg.Policy
	if job.Policy != nil {
		pol = *job.Policy
	}

	d, err := p.cfg.Engine.Decide(ctx, job.Node, job.Organisation, pol)
	if err != nil {
		return &Result{
			ID:          job.ID,
			Status:      ResultFailed,
			Error:       err.Error(),
			CompletedAt: time.Now().UTC(),
		}
	}

	in := scan.ForDecision(d, job.Node, d.Ceiling)

	return &Result{
		ID:          job.ID,
		Status:      ResultDone,
		Decision:    &d,
		Instruction: &in,
		CompletedAt: time.Now().UTC(),
	}
}

// writeResult writes a result to the outbox directory atomically.
func (p *Processor) writeResult(r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	filename := r.ID + ".json"
	tmpPath := filepath.Join(p.cfg.Dirs.Outbox, filename+".tmp")
	finalPath := filepath.Join(p.cfg.Dirs.Outbox, filename)

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	return os.Rename(tmpPath, finalPath)
}

// writeFailedResult writes a minimal failed result when the job can't be parsed.
func (p *Processor) writeFailedResult(id string, errMsg string) error {
	if id == "" {
		id = fmt.Sprintf("unknown-%d", time.Now().UnixNano())
	}
	r := &Result{
		ID:          id,
		Status:      ResultFailed,
		Error:       errMsg,
		CompletedAt: time.Now().UTC(),
	}
	return p.writeResult(r)
}
