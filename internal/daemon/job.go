// Package daemon implements the scanward inbox/outbox decision service.
// Decision jobs arrive as JSON files in the inbox directory, are run
// through the engine, and results are written to the outbox directory.
package daemon

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/scan"
)

// validID matches alphanumeric characters, dashes, and underscores only.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Job is a decision request dropped into the inbox: one node under one
// organisation, with an optional per-job policy override.
type Job struct {
	ID           string             `json:"id"`
	Node         model.Node         `json:"node"`
	Organisation model.Organisation `json:"organisation"`
	Policy       *model.ScanPolicy  `json:"policy,omitempty"` // overrides the daemon's policy when set
	CreatedAt    time.Time          `json:"created_at"`
}

// Result is written to the outbox after processing a job.
type Result struct {
	ID          string            `json:"id"`
	Status      string            `json:"status"`
	Decision    *model.Decision   `json:"decision,omitempty"`
	Instruction *scan.Instruction `json:"instruction,omitempty"`
	Error       string            `json:"error,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// Result status values.
const (
	ResultDone   = "done"
	ResultFailed = "failed"
)

// ValidateJob checks that a job has all required fields and safe values.
func ValidateJob(j *Job) error {
	if j.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if strings.Contains(j.ID, "..") {
		return fmt.Errorf("job ID must not contain '..'")
	}
	if !validID.MatchString(j.ID) {
		return fmt.Errorf("job ID contains invalid characters: only alphanumeric, dash, and underscore allowed")
	}
	if j.Node.ID == "" {
		return fmt.Errorf("job node.id is required")
	}
	if j.Node.Host == "" {
		return fmt.Errorf("job node.host is required")
	}
	if j.Organisation.ID == "" {
		return fmt.Errorf("job organisation.id is required")
	}
	return nil
}
