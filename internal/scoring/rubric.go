package scoring

// Criterion categories.
const (
	CategoryBusinessValue = "business_value"
	CategoryRiskFactor    = "risk_factor"
)

// Criterion is a single rated dimension of a rubric.
type Criterion struct {
	ID           string  `yaml:"id" json:"id"`
	Category     string  `yaml:"category" json:"category"`
	Weight       float64 `yaml:"weight" json:"weight"`
	Min          float64 `yaml:"min" json:"min"`
	Max          float64 `yaml:"max" json:"max"`
	ReverseScore bool    `yaml:"reverseScore" json:"reverseScore"`
}

// Effective maps a raw rating onto the criterion's scoring direction.
// Reversed criteria flip the rating within the score range, so a high
// rating yields a low contribution.
func (c Criterion) Effective(rating float64) float64 {
	if c.ReverseScore {
		return (c.Max + c.Min) - rating
	}
	return rating
}

// Midpoint of the criterion's score range.
func (c Criterion) Midpoint() float64 {
	return (c.Min + c.Max) / 2
}

// PriorityRule is a threshold predicate over the value and risk sums.
// Nil bounds are unconstrained. Bounds follow the quadrant convention:
// MinValue is inclusive (value >= x), MaxValue exclusive (value < x),
// MaxRisk inclusive (risk <= x), MinRisk exclusive (risk > x).
// Rules are plain data so rubrics can be versioned and loaded from config.
type PriorityRule struct {
	MinValue *float64 `yaml:"minValue,omitempty" json:"minValue,omitempty"`
	MaxValue *float64 `yaml:"maxValue,omitempty" json:"maxValue,omitempty"`
	MinRisk  *float64 `yaml:"minRisk,omitempty" json:"minRisk,omitempty"`
	MaxRisk  *float64 `yaml:"maxRisk,omitempty" json:"maxRisk,omitempty"`
	Priority int      `yaml:"priority" json:"priority"`
	Label    string   `yaml:"label" json:"label"`
}

// Matches reports whether the rule applies to the given value/risk pair.
func (r PriorityRule) Matches(value, risk float64) bool {
	if r.MinValue != nil && value < *r.MinValue {
		return false
	}
	if r.MaxValue != nil && value >= *r.MaxValue {
		return false
	}
	if r.MaxRisk != nil && risk > *r.MaxRisk {
		return false
	}
	if r.MinRisk != nil && risk <= *r.MinRisk {
		return false
	}
	return true
}

// Rubric is a named, versioned set of weighted criteria plus the ordered
// priority rules that classify the resulting value/risk pair.
type Rubric struct {
	ID            string         `yaml:"id" json:"id"`
	Version       string         `yaml:"version" json:"version"`
	Criteria      []Criterion    `yaml:"criteria" json:"criteria"`
	PriorityRules []PriorityRule `yaml:"priorityRules" json:"priorityRules"`
}

// Criterion looks up a criterion by id.
func (r *Rubric) Criterion(id string) (Criterion, bool) {
	for _, c := range r.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// classify evaluates the priority rules in order; first match wins.
// An unmatched pair falls back to priority 4, "Unclassified".
func (r *Rubric) classify(value, risk float64) (int, string) {
	for _, rule := range r.PriorityRules {
		if rule.Matches(value, risk) {
			return rule.Priority, rule.Label
		}
	}
	return 4, "Unclassified"
}
