// Package engine orchestrates one decision: assemble the context, evaluate
// the policy ceiling, consult the advisor if one is configured, reconcile,
// and record the outcome. The engine holds no mutable per-decision state,
// so a single Engine is safe for concurrent Decide calls.
package engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/perimetra/scanward/internal/advisor"
	"github.com/perimetra/scanward/internal/alert"
	"github.com/perimetra/scanward/internal/audit"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/policy"
)

// Config wires an Engine's collaborators. Every field is optional: a zero
// Config yields a policy-only engine that neither logs nor alerts.
type Config struct {
	Gateway    advisor.Gateway // nil means policy-only operation
	Timeout    time.Duration   // per-consultation budget, 0 uses the advisor default
	AuditLog   *audit.Log      // nil disables decision logging
	Alerts     *alert.Dispatcher
	PolicyHash string // SHA-256 of the loaded policy file, recorded with each decision
}

// Engine produces decisions. Construct with New.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Decide produces the next action for a node under an organisation's
// policy. The only error it ever returns is a *model.ConfigError: advisor
// failures, parse rejections, and unmet preconditions all degrade into a
// valid Decision instead.
func (e *Engine) Decide(ctx context.Context, node model.Node, org model.Organisation, pol model.ScanPolicy) (model.Decision, error) {
	dc, err := Assemble(node, org, pol)
	if err != nil {
		return model.Decision{}, err
	}

	// Org hard rules short-circuit before any policy or advisor work.
	if org.HostBlacklisted(node.Host) {
		d := hardSkip(fmt.Sprintf("host %s is blacklisted for organisation %s", node.Host, org.ID))
		e.record(dc, d)
		return d, nil
	}
	if !org.ProtocolAllowed(node.Protocol) {
		d := hardSkip(fmt.Sprintf("protocol %s is not whitelisted for organisation %s", node.Protocol, org.ID))
		e.record(dc, d)
		return d, nil
	}

	ev := policy.Evaluate(dc)
	if ev.ConfigErr != nil {
		return model.Decision{}, ev.ConfigErr
	}

	var parsed *advisor.ParsedDecision
	var cause error
	if e.cfg.Gateway != nil {
		resp := e.cfg.Gateway.Consult(ctx, dc, e.cfg.Timeout)
		if resp.Failed() {
			cause = resp.Err
		} else {
			parsed, cause = advisor.Parse(resp.Raw)
		}
		if cause != nil {
			fmt.Fprintf(os.Stderr, "scanward: advisor fallback for node %s: %v\n", node.ID, cause)
		}
	}

	d := Reconcile(dc, ev, parsed, cause)
	e.record(dc, d)
	return d, nil
}

// hardSkip is a terminal decision made without consulting policy caps or
// the advisor.
func hardSkip(reason string) model.Decision {
	return model.Decision{
		NextAction: model.ActionSkip,
		Reasoning:  reason,
		Source:     model.SourceHardRule,
		Confidence: 1.0,
		Ceiling:    model.ActionSkip,
		DecidedAt:  time.Now().UTC(),
	}
}

// record writes the decision to the audit log and dispatches alerts.
// Recording failures are reported to stderr, never returned: a decision
// that was made stands whether or not it could be persisted.
func (e *Engine) record(dc *model.DecisionContext, d model.Decision) {
	ts := d.DecidedAt.Format("2006-01-02T15:04:05.000Z")

	if e.cfg.AuditLog != nil {
		entry := audit.Entry{
			Timestamp:  ts,
			NodeID:     dc.Node.ID,
			Host:       dc.Node.Host,
			OrgID:      dc.Organisation.ID,
			Action:     string(d.NextAction),
			Source:     string(d.Source),
			Ceiling:    string(d.Ceiling),
			Confidence: d.Confidence,
			Reason:     d.Reasoning,
			PolicyHash: e.cfg.PolicyHash,
		}
		if err := e.cfg.AuditLog.Record(entry); err != nil {
			fmt.Fprintf(os.Stderr, "scanward: audit record failed: %v\n", err)
		}
	}

	if e.cfg.Alerts != nil {
		event := alert.Event{
			Timestamp:  ts,
			NodeID:     dc.Node.ID,
			Host:       dc.Node.Host,
			OrgID:      dc.Organisation.ID,
			Action:     string(d.NextAction),
			Source:     string(d.Source),
			Ceiling:    string(d.Ceiling),
			Confidence: d.Confidence,
			Reason:     d.Reasoning,
			PolicyHash: e.cfg.PolicyHash,
			Type:       eventType(d),
		}
		e.cfg.Alerts.Dispatch(event)
	}
}

func eventType(d model.Decision) string {
	switch {
	case d.NextAction == model.ActionManualReview:
		return "manual_review"
	case d.Source == model.SourcePolicyFallback:
		return "advisor_clamped"
	}
	return ""
}
