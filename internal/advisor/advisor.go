// Package advisor consults an external reasoning service for a soft scan
// recommendation and validates its output against the closed action
// vocabulary. The advisor is best-effort: slow, wrong, or silent are all
// normal conditions the caller must plan for, so failures are returned as
// values and never escape as panics or hard errors.
package advisor

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/perimetra/scanward/internal/model"
)

// defaultTimeout bounds a single consultation when the caller supplies none.
const defaultTimeout = 30 * time.Second

// Response is the raw outcome of one consultation. Transient; discarded
// after parsing.
type Response struct {
	Raw     string
	Latency time.Duration
	Err     error
}

// Failed reports whether the consultation produced no usable text.
func (r Response) Failed() bool {
	return r.Err != nil
}

// Gateway sends an assembled decision context to the external reasoning
// service. Implementations issue exactly one request per call, honor the
// timeout, and report failure in the Response rather than raising.
type Gateway interface {
	Consult(ctx context.Context, dc *model.DecisionContext, timeout time.Duration) Response
}

// Config holds parameters for the advisor connection.
type Config struct {
	Provider  string // "openai" (any OpenAI-compatible endpoint) or "gemini"
	APIURL    string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// ConfigFromEnv resolves advisor configuration from the environment.
// SCANWARD_API_URL unset means no advisor: the engine runs policy-only.
func ConfigFromEnv() Config {
	cfg := Config{
		Provider: os.Getenv("SCANWARD_PROVIDER"),
		APIURL:   os.Getenv("SCANWARD_API_URL"),
		APIKey:   os.Getenv("SCANWARD_API_KEY"),
		Model:    os.Getenv("SCANWARD_MODEL"),
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Provider == "gemini" && cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if v := os.Getenv("SCANWARD_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	return cfg
}

// Configured reports whether the environment names a reachable advisor.
func (c Config) Configured() bool {
	switch c.Provider {
	case "gemini":
		return c.APIKey != ""
	default:
		return c.APIURL != ""
	}
}
