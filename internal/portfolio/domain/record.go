package domain

import (
	"time"

	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

// SchemaVersion is the record schema this core speaks.
const SchemaVersion = "ai-project-v1.0"

var supportedSchemas = map[string]bool{
	SchemaVersion: true,
}

// ProjectRecord is the plain structured record exchanged with
// collaborators (persistence, HTTP, UI). Field names are the wire
// contract of the ai-project-v1.0 schema.
type ProjectRecord struct {
	Metadata        Metadata `json:"metadata"`
	MarkdownContent string   `json:"markdownContent,omitempty"`
}

type Metadata struct {
	Schema         string               `json:"schema"`
	Project        ProjectMeta          `json:"project"`
	Business       BusinessContext      `json:"business"`
	Classification Classification       `json:"classification"`
	Evaluations    *EvaluationsRecord   `json:"evaluations,omitempty"`
	CurrentScores  *CurrentScores       `json:"currentScores,omitempty"`
	Resources      ResourceRequirements `json:"resources"`
	Timeline       Timeline             `json:"timeline"`
	Tags           []string             `json:"tags,omitempty"`
	AuditTrail     []AuditEntry         `json:"auditTrail,omitempty"`
}

type ProjectMeta struct {
	ID              string         `json:"id"`
	Key             string         `json:"key,omitempty"`
	Name            string         `json:"name"`
	IsTemplate      bool           `json:"isTemplate,omitempty"`
	TemplateType    string         `json:"templateType,omitempty"`
	ProtectionLevel string         `json:"protectionLevel,omitempty"`
	CalibrationData map[string]any `json:"calibrationData,omitempty"`
	Status          string         `json:"status,omitempty"`
	Version         string         `json:"version,omitempty"`
	CreatedAt       time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt,omitempty"`
	DocumentPath    string         `json:"documentPath,omitempty"`
}

// EvaluationsRecord carries the single in-flight evaluation plus the
// completed history. Drafts that are neither are not serialized.
type EvaluationsRecord struct {
	Current *Evaluation   `json:"current,omitempty"`
	History []*Evaluation `json:"history,omitempty"`
}

// Trending compares the latest completed evaluation against the one
// before it.
type Trending struct {
	Trend            string  `json:"trend"`
	ScoreChange      float64 `json:"scoreChange"`
	PriorityChange   int     `json:"priorityChange"`
	ConfidenceChange float64 `json:"confidenceChange"`
}

// Trend values. The +-0.1 score bands are fixed hysteresis so small
// re-scoring noise does not flap between improving and declining.
const (
	TrendNew       = "new"
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// CurrentScores is the cached snapshot derived from the latest completed
// evaluation. It is recomputed on every evaluation append, never edited.
type CurrentScores struct {
	Overall           scoring.Overall `json:"overall"`
	Trending          Trending        `json:"trending"`
	LastUpdated       time.Time       `json:"lastUpdated"`
	BasedOnEvaluation string          `json:"basedOnEvaluation,omitempty"`
}

// validate collects every schema problem in the record.
func (rec *ProjectRecord) validate() error {
	var problems []string

	if rec.Metadata.Project.ID == "" {
		problems = append(problems, "missing required field: project.id")
	}
	if rec.Metadata.Project.Name == "" {
		problems = append(problems, "missing required field: project.name")
	}
	if !supportedSchemas[rec.Metadata.Schema] {
		problems = append(problems, "unsupported schema version: "+rec.Metadata.Schema)
	}

	if rec.Metadata.Evaluations != nil {
		inFlight := 0
		for _, ev := range rec.Metadata.Evaluations.All() {
			if err := ev.Evaluator.Validate(); err != nil {
				problems = append(problems, "evaluation "+ev.ID+": "+err.Error())
			}
			if ev.Status == EvaluationInProgress || ev.Status == EvaluationCurrent {
				inFlight++
			}
		}
		if inFlight > 1 {
			problems = append(problems, "more than one in-progress evaluation")
		}
	}

	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

// All lists the current evaluation (if any) followed by the history.
func (er *EvaluationsRecord) All() []*Evaluation {
	if er == nil {
		return nil
	}
	out := make([]*Evaluation, 0, len(er.History)+1)
	if er.Current != nil {
		out = append(out, er.Current)
	}
	out = append(out, er.History...)
	return out
}
