package scoring

import (
	"errors"
	"sort"
	"sync"
)

var ErrUnknownRubric = errors.New("unknown rubric")

// Registry holds named rubrics. Rubrics come from the built-in defaults
// plus any definitions loaded from configuration files.
type Registry struct {
	mu      sync.RWMutex
	rubrics map[string]*Rubric
}

func NewRegistry() *Registry {
	reg := &Registry{rubrics: map[string]*Rubric{}}
	reg.Register(DefaultQuickAssessment())
	return reg
}

func (reg *Registry) Register(r *Rubric) {
	if r == nil || r.ID == "" {
		return
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.rubrics[r.ID] = r
}

func (reg *Registry) Get(id string) (*Rubric, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rubrics[id]
	if !ok {
		return nil, ErrUnknownRubric
	}
	return r, nil
}

// IDs returns the registered rubric ids in stable order.
func (reg *Registry) IDs() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.rubrics))
	for id := range reg.rubrics {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func f(v float64) *float64 { return &v }

// DefaultQuickAssessment is the built-in six-criterion rubric. Value and
// risk criteria split 0.33/0.33/0.34; risk criteria score reversed
// within their 1..5 range, so a high rating contributes little to the
// risk sum.
func DefaultQuickAssessment() *Rubric {
	return &Rubric{
		ID:      "quick_assessment",
		Version: "1.0",
		Criteria: []Criterion{
			{ID: "revenue_impact", Category: CategoryBusinessValue, Weight: 0.33, Min: 1, Max: 5},
			{ID: "time_to_value", Category: CategoryBusinessValue, Weight: 0.33, Min: 1, Max: 5},
			{ID: "strategic_alignment", Category: CategoryBusinessValue, Weight: 0.34, Min: 1, Max: 5},
			{ID: "technical_complexity", Category: CategoryRiskFactor, Weight: 0.33, Min: 1, Max: 5, ReverseScore: true},
			{ID: "data_availability", Category: CategoryRiskFactor, Weight: 0.33, Min: 1, Max: 5, ReverseScore: true},
			{ID: "resource_requirements", Category: CategoryRiskFactor, Weight: 0.34, Min: 1, Max: 5, ReverseScore: true},
		},
		PriorityRules: []PriorityRule{
			{MinValue: f(3.5), MaxRisk: f(2.5), Priority: 1, Label: "High Value / Low Risk"},
			{MinValue: f(3.5), MinRisk: f(2.5), Priority: 2, Label: "High Value / High Risk"},
			{MaxValue: f(3.5), MaxRisk: f(2.5), Priority: 3, Label: "Medium Value / Low Risk"},
			{MaxValue: f(3.5), MinRisk: f(2.5), Priority: 4, Label: "Low Value / High Risk"},
		},
	}
}
