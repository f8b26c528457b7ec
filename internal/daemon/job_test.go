package daemon

import (
	"strings"
	"testing"

	"github.com/perimetra/scanward/internal/model"
)

func validJob() *Job {
	return &Job{
		ID:           "job-001",
		Node:         model.Node{ID: "n1", Host: "10.0.0.5"},
		Organisation: model.Organisation{ID: "org-1"},
	}
}

func TestValidateJobAccepted(t *testing.T) {
	if err := ValidateJob(validJob()); err != nil {
		t.Errorf("expected valid job, got %v", err)
	}
}

func TestValidateJobRequiresID(t *testing.T) {
	j := validJob()
	j.ID = ""
	if err := ValidateJob(j); err == nil {
		t.Error("expected error for missing ID")
	}
}

func TestValidateJobRejectsTraversal(t *testing.T) {
	j := validJob()
	j.ID = "../../etc/passwd"
	err := ValidateJob(j)
	if err == nil {
		t.Fatal("expected error for path traversal ID")
	}
	if !strings.Contains(err.Error(), "..") {
		t.Errorf("expected traversal rejection, got %v", err)
	}
}

func TestValidateJobRejectsSpecialCharacters(t *testing.T) {
	j := validJob()
	j.ID = "job 001; rm -rf /"
	if err := ValidateJob(j); err == nil {
		t.Error("expected error for special characters in ID")
	}
}

func TestValidateJobRequiresNodeAndOrg(t *testing.T) {
	j := validJob()
	j.Node.ID = ""
	if err := ValidateJob(j); err == nil {
		t.Error("expected error for missing node.id")
	}

	j = validJob()
	j.Node.Host = ""
	if err := ValidateJob(j); err == nil {
		t.Error("expected error for missing node.host")
	}

	j = validJob()
	j.Organisation.ID = ""
	if err := ValidateJob(j); err == nil {
		t.Error("expected error for missing organisation.id")
	}
}
