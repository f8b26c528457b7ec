// Package mcp exposes the decision engine as MCP tools over stdio, so
// agent frameworks can request scan decisions without shelling out.
package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/perimetra/scanward/internal/advisor"
	"github.com/perimetra/scanward/internal/alert"
	"github.com/perimetra/scanward/internal/audit"
	"github.com/perimetra/scanward/internal/engine"
	"github.com/perimetra/scanward/internal/model"
	"github.com/perimetra/scanward/internal/policy"
)

// Config holds MCP server configuration.
type Config struct {
	PolicyPath   string
	AuditLogPath string
	Advisor      advisor.Config
}

// Server wraps the MCP SDK server around a decision engine.
type Server struct {
	mcpServer *mcpsdk.Server
	engine    *engine.Engine
	policy    model.ScanPolicy
	auditLog  *audit.Log
}

// New creates an MCP server with loaded policy and registered tools.
func New(ctx context.Context, cfg Config) (*Server, error) {
	policyCfg, policyHash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("load policy config: %w", err)
	}

	var gw advisor.Gateway
	if cfg.Advisor.Configured() {
		gw, err = advisor.NewGateway(ctx, cfg.Advisor)
		if err != nil {
			return nil, fmt.Errorf("create advisor gateway: %w", err)
		}
	}

	var auditLog *audit.Log
	if cfg.AuditLogPath != "" {
		auditLog, err = audit.Open(cfg.AuditLogPath)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
	}

	eng := engine.New(engine.Config{
		Gateway:    gw,
		Timeout:    cfg.Advisor.Timeout,
		AuditLog:   auditLog,
		Alerts:     alert.NewDispatcher(policyCfg.Alerts),
		PolicyHash: policyHash,
	})

	s := &Server{
		engine:   eng,
		policy:   policyCfg.Policy,
		auditLog: auditLog,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "scanward",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close closes the audit log if configured.
func (s *Server) Close() error {
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// registerTools adds all scanward tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scanward_decide",
		Description: "Decide the next scan action for a node under an organisation's policy. Returns the decision and the resolved scan instruction.",
	}, s.handleDecide)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "scanward_check",
		Description: "Compute the policy ceiling for a node without consulting the advisor (dry-run). Returns the ceiling and any unmet preconditions.",
	}, s.handleCheck)
}

func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
