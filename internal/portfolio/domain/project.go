package domain

import (
	"math"
	"sort"
	"time"
)

// Project statuses gating edits and deletion.
const (
	StatusDraft      = "draft"
	StatusInProgress = "in_progress"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// Template protection levels.
const ProtectionReadOnly = "read_only"

// Project is the aggregate root: identity, business context, the
// evaluation history, and the cached score snapshot derived from it.
type Project struct {
	ID              string
	Key             string
	Name            string
	Status          string
	Version         string
	IsTemplate      bool
	TemplateType    string
	ProtectionLevel string
	CalibrationData map[string]any

	Business       BusinessContext
	Classification Classification
	Resources      ResourceRequirements
	Timeline       Timeline

	Evaluations   []*Evaluation
	CurrentScores *CurrentScores

	CreatedAt time.Time
	UpdatedAt time.Time

	Tags            []string
	AuditTrail      []AuditEntry
	DocumentPath    string
	MarkdownContent string
}

// NewProject constructs a Project from a validated record. A record that
// fails validation is rejected with a SchemaError listing every problem.
func NewProject(rec *ProjectRecord) (*Project, error) {
	if err := rec.validate(); err != nil {
		return nil, err
	}

	meta := rec.Metadata.Project
	p := &Project{
		ID:              meta.ID,
		Key:             meta.Key,
		Name:            meta.Name,
		Status:          meta.Status,
		Version:         meta.Version,
		IsTemplate:      meta.IsTemplate,
		TemplateType:    meta.TemplateType,
		ProtectionLevel: meta.ProtectionLevel,
		CalibrationData: meta.CalibrationData,
		Business:        rec.Metadata.Business,
		Classification:  rec.Metadata.Classification,
		Resources:       rec.Metadata.Resources,
		Timeline:        rec.Metadata.Timeline,
		CurrentScores:   rec.Metadata.CurrentScores,
		CreatedAt:       meta.CreatedAt,
		UpdatedAt:       meta.UpdatedAt,
		Tags:            rec.Metadata.Tags,
		AuditTrail:      rec.Metadata.AuditTrail,
		DocumentPath:    meta.DocumentPath,
		MarkdownContent: rec.MarkdownContent,
	}

	if p.Status == "" {
		p.Status = StatusDraft
	}
	if p.Version == "" {
		p.Version = "1.0.0"
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	for _, ev := range rec.Metadata.Evaluations.All() {
		ev.normalize()
		p.Evaluations = append(p.Evaluations, ev)
	}

	return p, nil
}

// Decision is the outcome of a permission check; Reason is set when the
// action is not allowed and is shown to the user directly.
type Decision struct {
	Allowed bool
	Reason  string
}

func (p *Project) CanEdit() Decision {
	if p.IsTemplate && p.ProtectionLevel == ProtectionReadOnly {
		return Decision{Reason: "Template is read-only"}
	}
	return Decision{Allowed: true}
}

func (p *Project) CanDelete() Decision {
	if p.IsTemplate {
		return Decision{Reason: "Templates cannot be deleted"}
	}
	if p.Status == StatusInProgress || p.Status == StatusApproved {
		return Decision{Reason: "Cannot delete project with status: " + p.Status}
	}
	return Decision{Allowed: true}
}

// AddEvaluation attaches an evaluation to the history (a no-op when it
// is already attached, as when a draft completes in place) and refreshes
// the cached score snapshot from it.
func (p *Project) AddEvaluation(e *Evaluation) {
	attached := false
	for _, existing := range p.Evaluations {
		if existing.ID == e.ID {
			attached = true
			break
		}
	}

	p.updateCurrentScores(e)
	if !attached {
		p.Evaluations = append(p.Evaluations, e)
	}
	p.UpdatedAt = time.Now().UTC()
}

// GetCurrentEvaluation returns the most recently completed evaluation,
// or nil when none has completed.
func (p *Project) GetCurrentEvaluation() *Evaluation {
	return p.latestCompleted("")
}

// latestCompleted finds the most recently completed evaluation by
// completion time, skipping the given id.
func (p *Project) latestCompleted(excludeID string) *Evaluation {
	var latest *Evaluation
	for _, e := range p.Evaluations {
		if !e.IsCompleted() || e.CompletedAt == nil || e.ID == excludeID {
			continue
		}
		if latest == nil || e.CompletedAt.After(*latest.CompletedAt) {
			latest = e
		}
	}
	return latest
}

// GetEvaluationHistory returns the evaluations sorted by creation time,
// newest first.
func (p *Project) GetEvaluationHistory() []*Evaluation {
	out := make([]*Evaluation, len(p.Evaluations))
	copy(out, p.Evaluations)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (p *Project) updateCurrentScores(e *Evaluation) {
	if e == nil || e.Scores == nil {
		return
	}
	p.CurrentScores = &CurrentScores{
		Overall:           e.Scores.Overall,
		Trending:          p.calculateTrending(e),
		LastUpdated:       time.Now().UTC(),
		BasedOnEvaluation: e.ID,
	}
}

// calculateTrending compares the new evaluation against the previous
// most recent completed one, excluding the new evaluation itself.
func (p *Project) calculateTrending(newEval *Evaluation) Trending {
	previous := p.latestCompleted(newEval.ID)
	if previous == nil || previous.Scores == nil {
		return Trending{Trend: TrendNew}
	}

	scoreChange := newEval.Scores.Overall.FinalScore - previous.Scores.Overall.FinalScore

	trend := TrendStable
	switch {
	case scoreChange > 0.1:
		trend = TrendImproving
	case scoreChange < -0.1:
		trend = TrendDeclining
	}

	return Trending{
		Trend:            trend,
		ScoreChange:      round2(scoreChange),
		PriorityChange:   newEval.Scores.Overall.Priority - previous.Scores.Overall.Priority,
		ConfidenceChange: newEval.Scores.Overall.Confidence - previous.Scores.Overall.Confidence,
	}
}

// CreateFromTemplate clones a template into a fresh draft project. The
// clone gets a generated id, no key, no evaluation record, and all
// template-only fields cleared; the key is assigned later by the
// repository layer.
func (p *Project) CreateFromTemplate() (*Project, error) {
	if !p.IsTemplate {
		return nil, ErrNotATemplate
	}

	now := time.Now().UTC()
	rec := p.ToRecord()
	rec.Metadata.Project.ID = GenerateProjectID(p.Name, now)
	rec.Metadata.Project.Key = ""
	rec.Metadata.Project.IsTemplate = false
	rec.Metadata.Project.TemplateType = ""
	rec.Metadata.Project.ProtectionLevel = ""
	rec.Metadata.Project.CalibrationData = nil
	rec.Metadata.Project.Status = StatusDraft
	rec.Metadata.Project.Version = "1.0.0"
	rec.Metadata.Project.CreatedAt = now
	rec.Metadata.Project.UpdatedAt = now
	rec.Metadata.Evaluations = nil
	rec.Metadata.CurrentScores = nil

	return NewProject(rec)
}

// ToRecord serializes the project back into its record form. Only the
// in-flight evaluation and the completed history are emitted, as
// copies, so the record stays stable while the live project keeps
// mutating.
func (p *Project) ToRecord() *ProjectRecord {
	return &ProjectRecord{
		Metadata: Metadata{
			Schema: SchemaVersion,
			Project: ProjectMeta{
				ID:              p.ID,
				Key:             p.Key,
				Name:            p.Name,
				IsTemplate:      p.IsTemplate,
				TemplateType:    p.TemplateType,
				ProtectionLevel: p.ProtectionLevel,
				CalibrationData: p.CalibrationData,
				Status:          p.Status,
				Version:         p.Version,
				CreatedAt:       p.CreatedAt,
				UpdatedAt:       p.UpdatedAt,
				DocumentPath:    p.DocumentPath,
			},
			Business:       p.Business,
			Classification: p.Classification,
			Evaluations:    p.serializeEvaluations(),
			CurrentScores:  p.CurrentScores,
			Resources:      p.Resources,
			Timeline:       p.Timeline,
			Tags:           p.Tags,
			AuditTrail:     p.AuditTrail,
		},
		MarkdownContent: p.MarkdownContent,
	}
}

func (p *Project) serializeEvaluations() *EvaluationsRecord {
	var current *Evaluation
	var history []*Evaluation

	for _, e := range p.Evaluations {
		ev := *e
		switch ev.Status {
		case EvaluationInProgress, EvaluationCurrent:
			if current == nil {
				current = &ev
			}
		case EvaluationCompleted:
			history = append(history, &ev)
		}
	}

	if current == nil && history == nil {
		return nil
	}
	return &EvaluationsRecord{Current: current, History: history}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
