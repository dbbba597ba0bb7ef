package domain

// Person identifies someone involved with a project.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// Stakeholder is a Person plus their stake in the project. Role here is
// the stakeholder role (primary_user, reviewer, approver) and shadows
// the person's job role in the wire format.
type Stakeholder struct {
	Person
	Impact string `json:"impact,omitempty"`
	Role   string `json:"role,omitempty"`
}

// BusinessContext captures who submitted and sponsors a project.
type BusinessContext struct {
	Submitter    Person        `json:"submitter"`
	Sponsor      *Person       `json:"sponsor,omitempty"`
	Department   string        `json:"department,omitempty"`
	Stakeholders []Stakeholder `json:"stakeholders,omitempty"`
}

// Classification places a project in the portfolio taxonomy.
type Classification struct {
	Category       string   `json:"category,omitempty"`
	Strategy       string   `json:"strategy,omitempty"`
	Complexity     string   `json:"complexity,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	SubDomain      string   `json:"subDomain,omitempty"`
	AITechnologies []string `json:"aiTechnologies,omitempty"`
}

// ResourceRequirements describes what a project needs to run.
type ResourceRequirements struct {
	TeamSize          int                `json:"teamSize,omitempty"`
	Budget            map[string]float64 `json:"budget,omitempty"`
	Skills            []string           `json:"skills,omitempty"`
	RequiredApprovals []string           `json:"requiredApprovals,omitempty"`
}

// TotalBudget sums the development, infrastructure and annual buckets.
func (r ResourceRequirements) TotalBudget() float64 {
	return r.Budget["development"] + r.Budget["infrastructure"] + r.Budget["annual"]
}

// Phase statuses.
const (
	PhasePlanned    = "planned"
	PhaseInProgress = "in_progress"
	PhaseCompleted  = "completed"
)

type Phase struct {
	Name      string  `json:"name"`
	StartDate string  `json:"startDate,omitempty"`
	EndDate   string  `json:"endDate,omitempty"`
	Status    string  `json:"status,omitempty"`
	Progress  float64 `json:"progress,omitempty"`
}

type Milestone struct {
	Name        string `json:"name"`
	Date        string `json:"date,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
}

// Timeline is the planned phases and milestones of a project.
type Timeline struct {
	Phases      []Phase     `json:"phases,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	ExpectedROI string      `json:"expectedROI,omitempty"`
}

// CurrentPhase returns the in-progress phase, falling back to the first
// planned one.
func (t Timeline) CurrentPhase() *Phase {
	for i := range t.Phases {
		if t.Phases[i].Status == PhaseInProgress {
			return &t.Phases[i]
		}
	}
	for i := range t.Phases {
		if t.Phases[i].Status == PhasePlanned {
			return &t.Phases[i]
		}
	}
	return nil
}

// Progress is the fraction of phases completed, 0 when no phases exist.
func (t Timeline) Progress() float64 {
	if len(t.Phases) == 0 {
		return 0
	}
	completed := 0
	for _, p := range t.Phases {
		if p.Status == PhaseCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(t.Phases))
}

// AuditEntry is one line of a project's audit trail. The core appends
// nothing itself; entries come in with the record and round-trip out.
type AuditEntry struct {
	Timestamp string `json:"timestamp,omitempty"`
	Actor     string `json:"actor,omitempty"`
	Action    string `json:"action,omitempty"`
	Detail    string `json:"detail,omitempty"`
}
