package advisor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/perimetra/scanward/internal/model"
)

// defaultConfidence is assumed when the advisor states an action but no
// confidence value.
const defaultConfidence = 0.8

// ParsedDecision is a validated advisor recommendation.
type ParsedDecision struct {
	Action     model.Action
	Reasoning  string
	Confidence float64
}

// ParseError means the advisor's output did not conform to the action
// vocabulary. Ambiguity is always a hard rejection, never a best-effort
// pick: a wrong silent guess could cause an over-aggressive scan.
type ParseError struct {
	Detail string
}

func (e *ParseError) Error() string {
	return "advisor output rejected: " + e.Detail
}

// actionToken matches any vocabulary member as a whole word, case-insensitive.
var actionToken = regexp.MustCompile(`(?i)\b(skip|scan_light|scan_medium|scan_ferocious|escalate|manual_review)\b`)

// confidenceExpr picks up "confidence 0.9", "confidence: 0.9" and similar.
var confidenceExpr = regexp.MustCompile(`(?i)\bconfidence\b[^0-9.\-]*(-?[0-9]*\.?[0-9]+)`)

// reasonExpr picks a trailing "reason: ..." / "reasoning: ..." fragment.
var reasonExpr = regexp.MustCompile(`(?i)\breason(?:ing)?\s*[:=]\s*(.+)`)

// Parse extracts a structured decision from raw advisor text.
//
// Two shapes are accepted: the JSON object the prompt asks for, and free
// prose containing exactly one vocabulary token. Everything else (no token,
// conflicting tokens, an unknown action, a confidence outside [0,1]) is a
// *ParseError. Parsing is pure: the same input always yields the same result.
func Parse(raw string) (*ParsedDecision, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, &ParseError{Detail: "empty response"}
	}

	if strings.HasPrefix(text, "{") {
		return parseJSON(text)
	}
	return parseProse(text)
}

// parseJSON handles the structured shape the prompt asks for.
func parseJSON(text string) (*ParsedDecision, error) {
	var body struct {
		NextAction string   `json:"next_action"`
		Reasoning  string   `json:"reasoning"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return nil, &ParseError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if body.NextAction == "" {
		return nil, &ParseError{Detail: "JSON response missing next_action"}
	}

	action, ok := model.ParseAction(body.NextAction)
	if !ok {
		return nil, &ParseError{Detail: fmt.Sprintf("unknown action %q", body.NextAction)}
	}

	confidence := defaultConfidence
	if body.Confidence != nil {
		confidence = *body.Confidence
		if confidence < 0 || confidence > 1 {
			return nil, &ParseError{Detail: fmt.Sprintf("confidence %v outside [0,1]", confidence)}
		}
	}

	return &ParsedDecision{
		Action:     action,
		Reasoning:  strings.TrimSpace(body.Reasoning),
		Confidence: confidence,
	}, nil
}

// parseProse handles free text: exactly one distinct vocabulary token must
// appear, or the whole response is rejected.
func parseProse(text string) (*ParsedDecision, error) {
	matches := actionToken.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, &ParseError{Detail: "no recognizable action token"}
	}

	distinct := map[model.Action]bool{}
	var action model.Action
	for _, m := range matches {
		a, _ := model.ParseAction(m)
		distinct[a] = true
		action = a
	}
	if len(distinct) > 1 {
		names := make([]string, 0, len(distinct))
		for a := range distinct {
			names = append(names, string(a))
		}
		sort.Strings(names)
		return nil, &ParseError{Detail: "conflicting action tokens: " + strings.Join(names, ", ")}
	}

	confidence := defaultConfidence
	if m := confidenceExpr.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v < 0 || v > 1 {
			return nil, &ParseError{Detail: fmt.Sprintf("confidence %q outside [0,1]", m[1])}
		}
		confidence = v
	}

	reasoning := strings.TrimSpace(text)
	if m := reasonExpr.FindStringSubmatch(text); m != nil {
		reasoning = strings.TrimSpace(m[1])
	}

	return &ParsedDecision{
		Action:     action,
		Reasoning:  reasoning,
		Confidence: confidence,
	}, nil
}

// stripFences removes markdown fences and surrounding whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
