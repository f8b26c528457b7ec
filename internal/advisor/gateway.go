package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/perimetra/scanward/internal/model"
)

// RemoteGateway consults a single Provider per decision.
// It does not retry: retry policy, if any, belongs to the caller.
type RemoteGateway struct {
	provider Provider
}

// NewGateway builds a gateway for the configured provider.
func NewGateway(ctx context.Context, cfg Config) (*RemoteGateway, error) {
	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case "", "openai":
		provider = NewOpenAIProvider(cfg)
	case "gemini":
		provider, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown advisor provider: %s", cfg.Provider)
	}
	return &RemoteGateway{provider: provider}, nil
}

// NewGatewayWithProvider wraps an existing provider. Used by tests and by
// callers that construct providers themselves.
func NewGatewayWithProvider(p Provider) *RemoteGateway {
	return &RemoteGateway{provider: p}
}

// Consult sends the decision context to the reasoning service and returns
// raw text or a failure, never both. The timeout is absolute for the single
// request; on expiry the response is flagged failed and control returns to
// the caller.
func (g *RemoteGateway) Consult(parent context.Context, dc *model.DecisionContext, timeout time.Duration) Response {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.provider.Complete(ctx, systemPrompt, BuildPrompt(dc))
	latency := time.Since(start)

	if err != nil {
		return Response{Latency: latency, Err: fmt.Errorf("%s: %w", g.provider.Name(), err)}
	}
	return Response{Raw: raw, Latency: latency}
}
