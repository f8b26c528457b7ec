package advisor

import (
	"errors"
	"strings"
	"testing"

	"github.com/perimetra/scanward/internal/model"
)

func TestParseJSONShape(t *testing.T) {
	raw := `{"next_action": "scan_medium", "reasoning": "routine re-scan", "confidence": 0.75}`

	d, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != model.ActionScanMedium {
		t.Errorf("expected scan_medium, got %s", d.Action)
	}
	if d.Reasoning != "routine re-scan" {
		t.Errorf("unexpected reasoning: %q", d.Reasoning)
	}
	if d.Confidence != 0.75 {
		t.Errorf("expected confidence 0.75, got %v", d.Confidence)
	}
}

func TestParseStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"next_action\": \"skip\", \"reasoning\": \"cooldown\"}\n```"

	d, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != model.ActionSkip {
		t.Errorf("expected skip, got %s", d.Action)
	}
}

func TestParseJSONMissingActionRejected(t *testing.T) {
	_, err := Parse(`{"reasoning": "no action here"}`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseJSONUnknownActionRejected(t *testing.T) {
	_, err := Parse(`{"next_action": "scan_nuclear"}`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for unknown action, got %v", err)
	}
	if !strings.Contains(pe.Detail, "scan_nuclear") {
		t.Errorf("expected detail to name the token, got %q", pe.Detail)
	}
}

func TestParseJSONConfidenceOutOfRange(t *testing.T) {
	_, err := Parse(`{"next_action": "skip", "confidence": 1.5}`)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for confidence 1.5, got %v", err)
	}
}

func TestParseJSONMissingConfidenceDefaults(t *testing.T) {
	d, err := Parse(`{"next_action": "scan_light", "reasoning": "fresh node"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Confidence != defaultConfidence {
		t.Errorf("expected default confidence %v, got %v", defaultConfidence, d.Confidence)
	}
}

func TestParseProseSingleToken(t *testing.T) {
	raw := "Given the anomalous traffic I recommend scan_ferocious, confidence 0.9. Reason: three new open ports since the last sweep."

	d, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != model.ActionScanFerocious {
		t.Errorf("expected scan_ferocious, got %s", d.Action)
	}
	if d.Confidence != 0.9 {
		t.Errorf("expected confidence 0.9, got %v", d.Confidence)
	}
	if !strings.Contains(d.Reasoning, "three new open ports") {
		t.Errorf("expected reason capture, got %q", d.Reasoning)
	}
}

func TestParseProseConflictingTokensRejected(t *testing.T) {
	raw := "Either skip or scan_medium would work here."

	_, err := Parse(raw)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for ambiguous answer, got %v", err)
	}
	if !strings.Contains(pe.Detail, "conflicting") {
		t.Errorf("expected conflicting-token detail, got %q", pe.Detail)
	}
}

func TestParseProseRepeatedTokenAccepted(t *testing.T) {
	raw := "scan_light. Yes, scan_light is right for a fresh node."

	d, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Action != model.ActionScanLight {
		t.Errorf("expected scan_light, got %s", d.Action)
	}
}

func TestParseProseNoTokenRejected(t *testing.T) {
	_, err := Parse("I am not sure what to do with this node.")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseEmptyRejected(t *testing.T) {
	for _, raw := range []string{"", "   ", "```\n```"} {
		if _, err := Parse(raw); err == nil {
			t.Errorf("expected empty input %q to be rejected", raw)
		}
	}
}

func TestParseIsDeterministic(t *testing.T) {
	raw := `{"next_action": "escalate", "reasoning": "findings doubled", "confidence": 0.6}`
	first, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if *first != *second {
		t.Errorf("expected identical results, got %+v and %+v", first, second)
	}
}
