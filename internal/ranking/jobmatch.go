package ranking

import "github.com/saksham-os/agent-core/internal/marketplace"

// MatchJobs returns the Open postings worth showing to a candidate: at least
// one required skill is in the candidate's skill set and the budget ceiling
// covers the candidate's minimum rate. Result order is unspecified; callers
// re-sort as needed. An empty candidate skill set matches nothing.
func MatchJobs(jobs *marketplace.Jobs, candidateSkills []string, minRate float64) []*marketplace.JobPosting {
	matches := make([]*marketplace.JobPosting, 0)
	if jobs == nil || len(candidateSkills) == 0 {
		return matches
	}

	for _, job := range jobs.Open().Items {
		count, _ := marketplace.MatchSkills(job.RequiredSkills(), candidateSkills)
		if count == 0 {
			continue
		}
		if job.BudgetCeiling() < minRate {
			continue
		}
		matches = append(matches, job)
	}
	return matches
}
