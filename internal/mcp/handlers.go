package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perimetra/scanward/internal/engine"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/policy"
	"github.com/perimetra/scanward/internal/scan"
)

// DecideInput defines parameters for the scanward_decide tool.
type DecideInput struct {
	Node         model.Node         `json:"node" jsonschema:"node to decide for (id and host required)"`
	Organisation model.Organisation `json:"organisation" jsonschema:"owning organisation (id required)"`
	Policy       *model.ScanPolicy  `json:"policy,omitempty" jsonschema:"scan policy override, omit to use the loaded policy file"`
}

// DecideOutput contains the decision and the resolved scan instruction.
type DecideOutput struct {
	Action      string           `json:"action"`
	Source      string           `json:"source"`
	Confidence  float64          `json:"confidence"`
	Reasoning   string           `json:"reasoning"`
	Ceiling     string           `json:"ceiling"`
	Instruction scan.Instruction `json:"instruction"`
	DecidedAt   string           `json:"decided_at"`
}

// CheckInput defines parameters for the scanward_check tool.
type CheckInput struct {
	Node         model.Node         `json:"node" jsonschema:"node to evaluate (id and host required)"`
	Organisation model.Organisation `json:"organisation" jsonschema:"owning organisation (id required)"`
	Policy       *model.ScanPolicy  `json:"policy,omitempty" jsonschema:"scan policy override, omit to use the loaded policy file"`
}

// CheckOutput contains the policy ceiling without any advisor involvement.
type CheckOutput struct {
	Ceiling string   `json:"ceiling"`
	Unmet   []string `json:"unmet,omitempty"`
}

func (s *Server) handleDecide(ctx context.Context, req *mcpsdk.CallToolRequest, input DecideInput) (*mcpsdk.CallToolResult, DecideOutput, error) {
	pol := s.policy
	if input.Policy != nil {
		pol = *input.Policy
	}

	d, err := s.engine.Decide(ctx, input.Node, input.Organisation, pol)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, DecideOutput{}, err
	}

	in := scan.ForDecision(d, input.Node, d.Ceiling)

	return nil, DecideOutput{
		Action:      string(d.NextAction),
		Source:      string(d.Source),
		Confidence:  d.Confidence,
		Reasoning:   d.Reasoning,
		Ceiling:     string(d.Ceiling),
		Instruction: in,
		DecidedAt:   nowStamp(),
	}, nil
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	pol := s.policy
	if input.Policy != nil {
		pol = *input.Policy
	}

	dc, err := engine.Assemble(input.Node, input.Organisation, pol)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, CheckOutput{}, err
	}

	ev := policy.Evaluate(dc)
	if ev.ConfigErr != nil {
		return &mcpsdk.CallToolResult{IsError: true}, CheckOutput{}, ev.ConfigErr
	}

	return nil, CheckOutput{
		Ceiling: string(ev.Ceiling),
		Unmet:   ev.Unmet,
	}, nil
}
