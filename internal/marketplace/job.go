package marketplace

// JobStatus is the lifecycle state of a posting.
type JobStatus string

const (
	JobOpen       JobStatus = "Open"
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
)

// Urgency is the client-declared urgency of a posting.
type Urgency string

const (
	UrgencyLow    Urgency = "Low"
	UrgencyMedium Urgency = "Medium"
	UrgencyHigh   Urgency = "High"
)

// ExperienceLevel is the seniority a posting asks for.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "Junior"
	ExperienceMid    ExperienceLevel = "Mid"
	ExperienceSenior ExperienceLevel = "Senior"
)

// JobPosting is a client job as stored by the marketplace. The Skills field
// keeps the raw upstream value: either a JSON array string or a
// comma-separated list. Use RequiredSkills to get the parsed form.
type JobPosting struct {
	ID              string          `json:"job_id"`
	Title           string          `json:"title"`
	Category        string          `json:"job_category,omitempty"`
	Description     string          `json:"job_description,omitempty"`
	BudgetMin       float64         `json:"budget_min,omitempty"`
	BudgetMax       float64         `json:"budget_max,omitempty"`
	Urgency         Urgency         `json:"urgency_level,omitempty"`
	ExperienceLevel ExperienceLevel `json:"experience_level,omitempty"`
	Skills          string          `json:"skills,omitempty"`
	Status          JobStatus       `json:"status,omitempty"`
	CompanyID       string          `json:"company_id,omitempty"`
	CompanyName     string          `json:"company_name,omitempty"`
}

// RequiredSkills parses the raw skills field into a normalized list.
func (j *JobPosting) RequiredSkills() []string {
	return ParseSkills(j.Skills)
}

// BudgetCeiling returns the budget figure used for price scoring and rate
// filtering: budget_max when present, otherwise budget_min. Zero means the
// posting carries no budget at all.
func (j *JobPosting) BudgetCeiling() float64 {
	if j.BudgetMax > 0 {
		return j.BudgetMax
	}
	return j.BudgetMin
}

// Jobs is a list of postings with small query helpers.
type Jobs struct {
	Items []*JobPosting
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *JobPosting {
	for _, job := range j.Items {
		if job.ID == id {
			return job
		}
	}
	return nil
}

// Open returns the postings still accepting bids.
func (j *Jobs) Open() *Jobs {
	open := &Jobs{}
	for _, job := range j.Items {
		if job.Status == JobOpen {
			open.Items = append(open.Items, job)
		}
	}
	return open
}
