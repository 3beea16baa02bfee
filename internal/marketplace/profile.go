package marketplace

import "context"

// FreelancerProfile is the profile store's view of a freelancer. The agents
// only read it; the store owns mutation.
type FreelancerProfile struct {
	ID                string   `json:"user_id"`
	Name              string   `json:"name,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	ExperienceYears   float64  `json:"experience_years,omitempty"`
	HourlyRate        float64  `json:"hourly_rate,omitempty"`
	CredibilityScore  float64  `json:"credibility_score,omitempty"`
	AssignedProjects  []string `json:"assigned_projects,omitempty"`
	AvailabilityHours float64  `json:"availability_hours_per_week,omitempty"`
	MinRate           float64  `json:"min_rate,omitempty"`
}

// Profiles with no declared availability are assumed to have a standard week.
const defaultAvailabilityHours = 40

// Utilization is a rough busyness heuristic: assigned projects weighted
// against weekly availability, as a percentage.
func (p *FreelancerProfile) Utilization() float64 {
	hours := p.AvailabilityHours
	if hours <= 0 {
		hours = defaultAvailabilityHours
	}
	if hours < 1 {
		hours = 1
	}
	return float64(len(p.AssignedProjects)) * 100 / hours
}

// ProfileStore resolves freelancer profiles in bulk. Ids without a profile
// are simply absent from the result, not an error.
type ProfileStore interface {
	LookupProfiles(ctx context.Context, ids []string) (map[string]*FreelancerProfile, error)
}
