package domain

import (
	"time"

	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

// Evaluation statuses. Transitions are linear: draft -> in_progress ->
// completed. Completed is terminal; an evaluation abandoned mid-way just
// keeps its last status.
const (
	EvaluationDraft      = "draft"
	EvaluationInProgress = "in_progress"
	EvaluationCurrent    = "current"
	EvaluationCompleted  = "completed"
)

// Evaluation is one scored assessment of a project at a point in time.
// Scores are set exactly once, by Complete, and are frozen afterwards.
type Evaluation struct {
	ID              string            `json:"evaluationId"`
	Type            string            `json:"type,omitempty"`
	Status          string            `json:"status,omitempty"`
	CreatedAt       time.Time         `json:"createdAt,omitempty"`
	StartedAt       time.Time         `json:"startedAt,omitempty"`
	CompletedAt     *time.Time        `json:"completedAt,omitempty"`
	Evaluator       Evaluator         `json:"evaluator"`
	Scores          *scoring.ScoreSet `json:"scores,omitempty"`
	Recommendations []string          `json:"recommendations,omitempty"`
	RiskAssessment  string            `json:"riskAssessment,omitempty"`
	AdditionalNotes string            `json:"additionalNotes,omitempty"`
	Attachments     []string          `json:"attachments,omitempty"`
}

// NewEvaluation starts a draft evaluation for the given rubric type.
func NewEvaluation(id, evalType string, evaluator Evaluator) *Evaluation {
	now := time.Now().UTC()
	return &Evaluation{
		ID:        id,
		Type:      evalType,
		Status:    EvaluationDraft,
		CreatedAt: now,
		StartedAt: now,
		Evaluator: evaluator,
	}
}

// normalize fills defaults after decoding a record.
func (e *Evaluation) normalize() {
	if e.Status == "" {
		e.Status = EvaluationDraft
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.StartedAt
	}
}

// IsCompleted reports whether the evaluation reached its terminal state.
func (e *Evaluation) IsCompleted() bool {
	return e.Status == EvaluationCompleted
}

// Complete finalizes the evaluation with its scores and recommendations.
// Completing twice fails with ErrAlreadyCompleted: evaluation history is
// append-only, re-scoring means starting a new evaluation.
func (e *Evaluation) Complete(scores *scoring.ScoreSet, recommendations []string) error {
	if e.IsCompleted() {
		return ErrAlreadyCompleted
	}

	now := time.Now().UTC()
	if now.Before(e.StartedAt) {
		now = e.StartedAt
	}

	e.Status = EvaluationCompleted
	e.CompletedAt = &now
	e.Scores = scores
	e.Recommendations = recommendations
	return nil
}
