package engine

import (
	"time"

	"github.com/perimetra/scanward/internal/model"
)

// Assemble builds the immutable context snapshot that both the policy
// evaluator and the advisor see. Deterministic and side-effect-free:
// derived signals are computed once here so the two consumers cannot
// diverge on input.
func Assemble(node model.Node, org model.Organisation, pol model.ScanPolicy) (*model.DecisionContext, error) {
	if node.ID == "" {
		return nil, &model.ConfigError{Field: "node.id", Detail: "required"}
	}
	if org.ID == "" {
		return nil, &model.ConfigError{Field: "organisation.id", Detail: "required"}
	}

	now := time.Now().UTC()

	daysSince := -1.0
	if !node.LastScanTime.IsZero() {
		daysSince = now.Sub(node.LastScanTime).Hours() / 24
	}

	return &model.DecisionContext{
		Node:              node,
		Organisation:      org,
		Policy:            pol,
		DaysSinceLastScan: daysSince,
		PriorFindings:     node.FindingCount,
		AssembledAt:       now,
	}, nil
}
