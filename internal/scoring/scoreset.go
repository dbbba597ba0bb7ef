package scoring

// Overall is the headline result of a scoring run.
type Overall struct {
	FinalScore float64 `json:"finalScore"`
	Priority   int     `json:"priority"`
	Confidence float64 `json:"confidence"`
}

// Dimension is one scored axis (value, risk, ...) with the raw ratings
// that produced it.
type Dimension struct {
	Score     float64            `json:"score"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
	Reasoning string             `json:"reasoning,omitempty"`
}

// ScoreSet is the immutable output of one scoring run.
type ScoreSet struct {
	Overall    Overall              `json:"overall"`
	Dimensions map[string]Dimension `json:"dimensions,omitempty"`
}

var priorityLabels = map[int]string{
	1: "High Value / Low Risk",
	2: "High Value / High Risk",
	3: "Medium Value / Low Risk",
	4: "Low Value / High Risk",
}

var priorityColors = map[int]string{
	1: "#4ade80",
	2: "#fbbf24",
	3: "#60a5fa",
	4: "#f87171",
}

// PriorityLabel derives the display label from the priority quadrant.
func (s *ScoreSet) PriorityLabel() string {
	if label, ok := priorityLabels[s.Overall.Priority]; ok {
		return label
	}
	return "Unknown"
}

// PriorityColor derives the dashboard color from the priority quadrant.
func (s *ScoreSet) PriorityColor() string {
	if color, ok := priorityColors[s.Overall.Priority]; ok {
		return color
	}
	return "#94a3b8"
}
