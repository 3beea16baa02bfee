package ranking

import (
	"testing"

	"github.com/saksham-os/agent-core/internal/marketplace"
)

func TestMatchJobs(t *testing.T) {
	jobs := &marketplace.Jobs{Items: []*marketplace.JobPosting{
		{ID: "fits", Status: marketplace.JobOpen, Skills: "React,Node.js", BudgetMax: 50000},
		{ID: "too-cheap", Status: marketplace.JobOpen, Skills: "React", BudgetMax: 200},
		{ID: "no-overlap", Status: marketplace.JobOpen, Skills: "Rust", BudgetMax: 50000},
		{ID: "closed", Status: marketplace.JobCompleted, Skills: "React", BudgetMax: 50000},
		{ID: "min-only", Status: marketplace.JobOpen, Skills: "react", BudgetMin: 600},
	}}

	matches := MatchJobs(jobs, []string{"React", "TypeScript"}, 500)

	got := make(map[string]bool, len(matches))
	for _, job := range matches {
		got[job.ID] = true
	}

	if len(matches) != 2 || !got["fits"] || !got["min-only"] {
		t.Fatalf("unexpected match set: %v", got)
	}
}

func TestMatchJobsEmptyCandidateSkills(t *testing.T) {
	jobs := &marketplace.Jobs{Items: []*marketplace.JobPosting{
		{ID: "open", Status: marketplace.JobOpen, Skills: "React", BudgetMax: 50000},
	}}

	if matches := MatchJobs(jobs, nil, 0); len(matches) != 0 {
		t.Fatalf("expected no matches for empty skill set, got %d", len(matches))
	}
}
