package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/perimetra/scanward/internal/model"
)

func TestAssembleRequiresNodeID(t *testing.T) {
	_, err := Assemble(model.Node{Host: "10.0.0.5"}, model.Organisation{ID: "org-1"}, model.ScanPolicy{})

	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Field != "node.id" {
		t.Errorf("expected node.id field, got %s", ce.Field)
	}
}

func TestAssembleRequiresOrgID(t *testing.T) {
	_, err := Assemble(model.Node{ID: "n1"}, model.Organisation{}, model.ScanPolicy{})

	var ce *model.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ce.Field != "organisation.id" {
		t.Errorf("expected organisation.id field, got %s", ce.Field)
	}
}

func TestAssembleNeverScannedNode(t *testing.T) {
	dc, err := Assemble(model.Node{ID: "n1"}, model.Organisation{ID: "org-1"}, model.ScanPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if dc.DaysSinceLastScan != -1 {
		t.Errorf("expected -1 days for never-scanned node, got %v", dc.DaysSinceLastScan)
	}
}

func TestAssembleDaysSinceLastScan(t *testing.T) {
	node := model.Node{ID: "n1", LastScanTime: time.Now().UTC().Add(-48 * time.Hour), FindingCount: 4}

	dc, err := Assemble(node, model.Organisation{ID: "org-1"}, model.ScanPolicy{})
	if err != nil {
		t.Fatal(err)
	}
	if dc.DaysSinceLastScan < 1.9 || dc.DaysSinceLastScan > 2.1 {
		t.Errorf("expected about 2 days, got %v", dc.DaysSinceLastScan)
	}
	if dc.PriorFindings != 4 {
		t.Errorf("expected 4 prior findings, got %d", dc.PriorFindings)
	}
}
