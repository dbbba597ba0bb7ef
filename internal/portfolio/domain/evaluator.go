package domain

import "fmt"

// Evaluator kinds.
const (
	EvaluatorHuman       = "human"
	EvaluatorAlgorithmic = "algorithmic"
	EvaluatorCommittee   = "committee"
)

// Evaluator is whoever produced an evaluation: a person, a scoring
// algorithm (Version identifies the release), or a committee (Members
// lists the people). Type is the variant tag; Validate enforces the
// fields each variant requires.
type Evaluator struct {
	Name    string   `json:"name,omitempty"`
	Type    string   `json:"type"`
	Email   string   `json:"email,omitempty"`
	Role    string   `json:"role,omitempty"`
	Version string   `json:"version,omitempty"`
	Members []Person `json:"members,omitempty"`
}

func (e Evaluator) IsHuman() bool       { return e.Type == EvaluatorHuman }
func (e Evaluator) IsAlgorithmic() bool { return e.Type == EvaluatorAlgorithmic }
func (e Evaluator) IsCommittee() bool   { return e.Type == EvaluatorCommittee }

func (e Evaluator) Validate() error {
	switch e.Type {
	case EvaluatorHuman:
		if e.Name == "" {
			return fmt.Errorf("human evaluator requires a name")
		}
	case EvaluatorAlgorithmic:
		if e.Name == "" {
			return fmt.Errorf("algorithmic evaluator requires a name")
		}
		if e.Version == "" {
			return fmt.Errorf("algorithmic evaluator requires a version")
		}
	case EvaluatorCommittee:
		if len(e.Members) == 0 {
			return fmt.Errorf("committee evaluator requires members")
		}
	default:
		return fmt.Errorf("unknown evaluator type: %q", e.Type)
	}
	return nil
}
