package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/perimetra/scanward/internal/advisor"
	"github.com/perimetra/scanward/internal/alert"
	"github.com/perimetra/scanward/internal/audit"
	"github.com/perimetra/scanward/internal/engine"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/policy"
)

// buildEngine loads the policy file, the advisor environment, and the audit
// log, and assembles a ready engine. The returned audit.Log is nil when no
// log path was given; callers close it when non-nil.
func buildEngine(ctx context.Context, policyPath, auditLogPath string, policyOnly bool) (*engine.Engine, *policy.Config, *audit.Log, error) {
	cfg, hash, err := policy.LoadConfigWithHash(policyPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load policy: %w", err)
	}

	var gw advisor.Gateway
	advCfg := advisor.ConfigFromEnv()
	if !policyOnly && advCfg.Configured() {
		gw, err = advisor.NewGateway(ctx, advCfg)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create advisor gateway: %w", err)
		}
	}

	var log *audit.Log
	if auditLogPath != "" {
		log, err = audit.Open(auditLogPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	eng := engine.New(engine.Config{
		Gateway:    gw,
		Timeout:    advCfg.Timeout,
		AuditLog:   log,
		Alerts:     alert.NewDispatcher(cfg.Alerts),
		PolicyHash: hash,
	})
	return eng, cfg, log, nil
}

// loadNodeInputs resolves the node and organisation either from JSON files
// or from the quick-form flags (--target plus --org-id).
func loadNodeInputs(nodePath, orgPath, target, nodeID, orgID string) (model.Node, model.Organisation, error) {
	var node model.Node
	var org model.Organisation

	switch {
	case nodePath != "":
		if err := readJSONFile(nodePath, &node); err != nil {
			return node, org, fmt.Errorf("read node file: %w", err)
		}
	case target != "":
		node = model.Node{ID: nodeID, Host: target}
		if node.ID == "" {
			node.ID = target
		}
	default:
		return node, org, fmt.Errorf("either --node or --target is required")
	}

	switch {
	case orgPath != "":
		if err := readJSONFile(orgPath, &org); err != nil {
			return node, org, fmt.Errorf("read organisation file: %w", err)
		}
	case orgID != "":
		org = model.Organisation{ID: orgID}
	default:
		return node, org, fmt.Errorf("either --org or --org-id is required")
	}

	return node, org, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
