package hunter

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/saksham-os/agent-core/internal/ai"
	"github.com/saksham-os/agent-core/internal/marketplace"
	"github.com/saksham-os/agent-core/internal/util"
	"go.uber.org/zap"
)

const (
	minMatchSkillCount = 1
	minCredibility     = 30
	// Above this utilization percentage the freelancer counts as busy.
	busyUtilThreshold = 60
	// A busy freelancer still bids sometimes; this is the chance of skipping.
	busySkipProbability = 0.7

	// Heuristics for suggesting a rate and effort estimate.
	defaultBudgetEstimate = 40000
	minSuggestedRate      = 500
	budgetToRateDivisor   = 40
	minEstimatedHours     = 4
	maxEstimatedHours     = 300

	draftMaxTokens = 350
)

// Option is one entry in the draft's action menu.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Meta carries the transparency numbers behind a draft.
type Meta struct {
	MatchScore     int     `json:"match_score"`
	EstimatedHours int     `json:"estimated_hours"`
	SuggestedRate  float64 `json:"suggested_rate"`
	Reason         string  `json:"reason"`
}

// Proposal is a drafted-but-not-sent bid the freelancer reviews in the UI.
type Proposal struct {
	ID           string   `json:"proposal_id"`
	FreelancerID string   `json:"freelancer_id"`
	JobID        string   `json:"job_id"`
	Draft        string   `json:"proposal_draft"`
	Options      []Option `json:"options"`
	Meta         Meta     `json:"meta"`
}

// Drafter decides whether a job notification merits an automatic proposal
// and produces the draft.
type Drafter struct {
	gen    ai.Drafter
	logger *zap.Logger
	random func() float64
}

func NewDrafter(gen ai.Drafter, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafter{
		gen:    gen,
		logger: logger,
		random: rand.Float64,
	}
}

// SetRandom replaces the random source used by the busy check. Tests pin it
// to make the probabilistic skip deterministic.
func (d *Drafter) SetRandom(fn func() float64) {
	if fn != nil {
		d.random = fn
	}
}

// ShouldAct is the eligibility gate: enough skill overlap, acceptable
// credibility, and not too busy. A freelancer over the busy threshold still
// acts with a 30% chance, so a loaded schedule dampens bidding without
// stopping it entirely.
func (d *Drafter) ShouldAct(job *marketplace.JobPosting, profile *marketplace.FreelancerProfile) bool {
	if job == nil || profile == nil {
		return false
	}

	matches, _ := marketplace.MatchSkills(job.RequiredSkills(), profile.Skills)
	if matches < minMatchSkillCount {
		return false
	}
	if profile.CredibilityScore < minCredibility {
		return false
	}

	if util := profile.Utilization(); util > busyUtilThreshold && d.random() < busySkipProbability {
		d.logger.Debug("skipping busy freelancer",
			zap.String("freelancer_id", profile.ID),
			zap.String("job_id", job.ID),
			zap.Float64("utilization_pct", util),
		)
		return false
	}

	return true
}

// OnJobNotification produces a proposal draft for the job, or nil when any
// gate fails. A failing text generator degrades to a templated draft, never
// to an error.
func (d *Drafter) OnJobNotification(ctx context.Context, job *marketplace.JobPosting, profile *marketplace.FreelancerProfile) *Proposal {
	if !d.ShouldAct(job, profile) {
		return nil
	}

	if !experienceOK(job.ExperienceLevel, profile.ExperienceYears) {
		d.logger.Debug("experience below posting level",
			zap.String("freelancer_id", profile.ID),
			zap.String("job_id", job.ID),
			zap.String("level", string(job.ExperienceLevel)),
			zap.Float64("experience_years", profile.ExperienceYears),
		)
		return nil
	}

	budget := job.BudgetCeiling()
	if budget <= 0 {
		budget = defaultBudgetEstimate
	}

	rate := profile.HourlyRate
	if rate <= 0 {
		rate = math.Round(math.Max(minSuggestedRate, budget/budgetToRateDivisor))
	}

	hours := int(math.Min(maxEstimatedHours, math.Max(minEstimatedHours, math.Round(budget/rate))))

	draft := d.draftText(ctx, job, profile, rate, hours)

	matches, _ := marketplace.MatchSkills(job.RequiredSkills(), profile.Skills)
	matchScore := int(math.Min(100, math.Round(
		float64(matches)*40+profile.CredibilityScore*0.3+math.Min(20, profile.ExperienceYears)*2,
	)))

	return &Proposal{
		ID:           uuid.NewString(),
		FreelancerID: profile.ID,
		JobID:        job.ID,
		Draft:        draft,
		Options: []Option{
			{ID: "edit", Label: "Edit"},
			{ID: "send", Label: "Send Proposal"},
			{ID: "cancel", Label: "Cancel"},
		},
		Meta: Meta{
			MatchScore:     matchScore,
			EstimatedHours: hours,
			SuggestedRate:  rate,
			Reason: fmt.Sprintf("skills:%d,cred:%.0f,exp:%.0f",
				matches, profile.CredibilityScore, profile.ExperienceYears),
		},
	}
}

func (d *Drafter) draftText(ctx context.Context, job *marketplace.JobPosting, profile *marketplace.FreelancerProfile, rate float64, hours int) string {
	fallback := fmt.Sprintf("Hi — I propose to deliver this project. Rate: ₹%.0f/hr. Est hours: %d.", rate, hours)

	if d.gen == nil {
		return fallback
	}

	prompt := buildProposalPrompt(job, profile, rate, hours)

	d.logger.Debug("proposal draft request",
		zap.String("job_id", job.ID),
		zap.String("freelancer_id", profile.ID),
		zap.String("prompt_preview", util.TruncateForLog(prompt, 200)),
	)

	text, err := d.gen.Draft(ctx, prompt, draftMaxTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		d.logger.Warn("proposal generation failed, using templated draft",
			zap.String("job_id", job.ID),
			zap.String("freelancer_id", profile.ID),
			zap.Error(err),
		)
		return fallback
	}
	return text
}

func buildProposalPrompt(job *marketplace.JobPosting, profile *marketplace.FreelancerProfile, rate float64, hours int) string {
	name := profile.Name
	if name == "" {
		name = profile.ID
	}

	return strings.TrimSpace(fmt.Sprintf(`
You are a professional freelance proposal writer. Given the job below and freelancer profile, produce a concise proposal (3 short paragraphs) including:
- One-line value proposition tailored to the job.
- List of 3 deliverables / milestones with estimated hours and cost (₹).
- Call to action (ask for a short call and propose next steps).
Keep tone professional and confident. Include suggested hourly rate and total estimated project cost.

JOB:
%s
Category: %s
Description: %s
Budget: %.0f - %.0f

FREELANCER PROFILE:
Name: %s
Primary skills: %s
Experience years: %.0f
Suggested hourly rate: ₹%.0f
Estimated hours: %d

Output ONLY the proposal text (no explanation).`,
		job.Title, orNA(job.Category), orNA(job.Description),
		job.BudgetMin, job.BudgetMax,
		name, strings.Join(profile.Skills, ", "), profile.ExperienceYears, rate, hours,
	))
}

func experienceOK(level marketplace.ExperienceLevel, years float64) bool {
	switch level {
	case marketplace.ExperienceMid:
		return years >= 2
	case marketplace.ExperienceSenior:
		return years >= 5
	default:
		// Junior and unspecified levels accept anyone.
		return true
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
