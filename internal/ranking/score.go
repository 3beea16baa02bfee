package ranking

import (
	"math"

	"github.com/saksham-os/agent-core/internal/marketplace"
)

// Component weights of the composite bid score.
const (
	skillWeight      = 0.4
	experienceWeight = 0.3
	priceWeight      = 0.3

	// Experience saturates at this many years.
	experienceCapYears = 5
	// A bid at or above ceiling*priceCeilingFactor scores zero on price.
	priceCeilingFactor = 1.5
	// Last-resort ceiling when the posting carries no budget at all.
	noBudgetBidFactor = 1.2
)

// Breakdown holds the rounded sub-scores behind a composite score.
type Breakdown struct {
	Skill      int `json:"skill_score"`
	Experience int `json:"experience_score"`
	Price      int `json:"price_score"`
}

// ScoredBid is a bid with its composite score attached.
type ScoredBid struct {
	*marketplace.Bid
	Score   int       `json:"score"`
	Details Breakdown `json:"details"`
}

// ScoreBid computes the 0-100 composite score for one bid. A missing profile
// zeroes the whole score; every other odd input degrades to a neutral
// component instead of an error.
func ScoreBid(job *marketplace.JobPosting, bid *marketplace.Bid, profile *marketplace.FreelancerProfile) (int, Breakdown) {
	if job == nil || bid == nil || profile == nil {
		return 0, Breakdown{}
	}

	skillScore := skillScore(job, profile)
	experienceScore := experienceScore(profile)
	priceScore := priceScore(job, bid)

	composite := skillScore*skillWeight + experienceScore*experienceWeight + priceScore*priceWeight

	return int(math.Round(composite)), Breakdown{
		Skill:      int(math.Round(skillScore)),
		Experience: int(math.Round(experienceScore)),
		Price:      int(math.Round(priceScore)),
	}
}

func skillScore(job *marketplace.JobPosting, profile *marketplace.FreelancerProfile) float64 {
	required := job.RequiredSkills()
	if len(required) == 0 {
		return 0
	}
	matches, _ := marketplace.MatchSkills(required, profile.Skills)
	return float64(matches) / float64(len(required)) * 100
}

func experienceScore(profile *marketplace.FreelancerProfile) float64 {
	years := profile.ExperienceYears
	if years < 0 {
		years = 0
	}
	return math.Min(100, years/experienceCapYears*100)
}

func priceScore(job *marketplace.JobPosting, bid *marketplace.Bid) float64 {
	ceiling := job.BudgetCeiling()
	if ceiling <= 0 {
		ceiling = bid.Amount * noBudgetBidFactor
	}
	if ceiling <= 0 {
		return 0
	}
	return math.Max(0, 100*(1-bid.Amount/(ceiling*priceCeilingFactor)))
}
