package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

func validRecord() *ProjectRecord {
	return &ProjectRecord{
		Metadata: Metadata{
			Schema: SchemaVersion,
			Project: ProjectMeta{
				ID:   "20250110_0930_customer_churn",
				Key:  "AI-001",
				Name: "Customer Churn Prediction",
			},
			Business: BusinessContext{
				Submitter:  Person{Name: "Dana Reyes", Email: "dana@example.com"},
				Department: "Marketing",
			},
			Classification: Classification{
				Category: "machine_learning",
				Domain:   "customer_analytics",
			},
		},
	}
}

func completedEval(id string, completedAt time.Time, final float64, priority int, confidence float64) *Evaluation {
	return &Evaluation{
		ID:          id,
		Type:        "quick_assessment",
		Status:      EvaluationCompleted,
		CreatedAt:   completedAt.Add(-time.Hour),
		StartedAt:   completedAt.Add(-time.Hour),
		CompletedAt: &completedAt,
		Evaluator:   Evaluator{Type: EvaluatorHuman, Name: "Dana Reyes"},
		Scores: &scoring.ScoreSet{
			Overall: scoring.Overall{FinalScore: final, Priority: priority, Confidence: confidence},
		},
	}
}

func TestNewProject(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		p, err := NewProject(validRecord())
		require.NoError(t, err)

		assert.Equal(t, StatusDraft, p.Status)
		assert.Equal(t, "1.0.0", p.Version)
		assert.False(t, p.CreatedAt.IsZero())
		assert.False(t, p.UpdatedAt.IsZero())
		assert.Empty(t, p.Evaluations)
	})

	t.Run("collects every schema problem", func(t *testing.T) {
		rec := validRecord()
		rec.Metadata.Schema = "ai-project-v9.9"
		rec.Metadata.Project.ID = ""
		rec.Metadata.Project.Name = ""

		_, err := NewProject(rec)
		require.Error(t, err)

		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Len(t, schemaErr.Problems, 3)
		assert.Contains(t, err.Error(), "project.id")
		assert.Contains(t, err.Error(), "unsupported schema version")
	})

	t.Run("rejects invalid evaluators in the record", func(t *testing.T) {
		rec := validRecord()
		rec.Metadata.Evaluations = &EvaluationsRecord{
			History: []*Evaluation{{
				ID:        "eval_1",
				Status:    EvaluationCompleted,
				Evaluator: Evaluator{Type: EvaluatorAlgorithmic, Name: "auto-scorer"},
			}},
		}

		_, err := NewProject(rec)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, err.Error(), "requires a version")
	})

	t.Run("rejects a second in-progress evaluation", func(t *testing.T) {
		rec := validRecord()
		rec.Metadata.Evaluations = &EvaluationsRecord{
			Current: &Evaluation{
				ID:        "eval_open",
				Status:    EvaluationInProgress,
				Evaluator: Evaluator{Type: EvaluatorHuman, Name: "Dana Reyes"},
			},
			History: []*Evaluation{{
				ID:        "eval_stale",
				Status:    EvaluationCurrent,
				Evaluator: Evaluator{Type: EvaluatorHuman, Name: "Sam Ortiz"},
			}},
		}

		_, err := NewProject(rec)
		var schemaErr *SchemaError
		require.ErrorAs(t, err, &schemaErr)
		assert.Contains(t, err.Error(), "more than one in-progress evaluation")
	})

	t.Run("normalizes decoded evaluations", func(t *testing.T) {
		rec := validRecord()
		started := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		rec.Metadata.Evaluations = &EvaluationsRecord{
			Current: &Evaluation{
				ID:        "eval_current",
				StartedAt: started,
				Evaluator: Evaluator{Type: EvaluatorHuman, Name: "Dana Reyes"},
			},
		}

		p, err := NewProject(rec)
		require.NoError(t, err)
		require.Len(t, p.Evaluations, 1)
		assert.Equal(t, EvaluationDraft, p.Evaluations[0].Status)
		assert.Equal(t, started, p.Evaluations[0].CreatedAt)
	})
}

func TestProject_Permissions(t *testing.T) {
	t.Run("read-only templates cannot be edited", func(t *testing.T) {
		p := &Project{IsTemplate: true, ProtectionLevel: ProtectionReadOnly}
		d := p.CanEdit()
		assert.False(t, d.Allowed)
		assert.Equal(t, "Template is read-only", d.Reason)

		assert.True(t, (&Project{IsTemplate: true}).CanEdit().Allowed)
		assert.True(t, (&Project{Status: StatusApproved}).CanEdit().Allowed)
	})

	t.Run("templates and active projects cannot be deleted", func(t *testing.T) {
		d := (&Project{IsTemplate: true}).CanDelete()
		assert.False(t, d.Allowed)
		assert.Equal(t, "Templates cannot be deleted", d.Reason)

		for _, status := range []string{StatusInProgress, StatusApproved} {
			d := (&Project{Status: status}).CanDelete()
			assert.False(t, d.Allowed)
			assert.Equal(t, "Cannot delete project with status: "+status, d.Reason)
		}

		assert.True(t, (&Project{Status: StatusDraft}).CanDelete().Allowed)
		assert.True(t, (&Project{Status: StatusRejected}).CanDelete().Allowed)
	})
}

func TestProject_AddEvaluation_Trending(t *testing.T) {
	p, err := NewProject(validRecord())
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first completed evaluation trends new", func(t *testing.T) {
		p.AddEvaluation(completedEval("eval_1", base, 2.0, 3, 0.7))

		require.NotNil(t, p.CurrentScores)
		assert.Equal(t, "eval_1", p.CurrentScores.BasedOnEvaluation)
		assert.Equal(t, 2.0, p.CurrentScores.Overall.FinalScore)
		assert.Equal(t, TrendNew, p.CurrentScores.Trending.Trend)
	})

	t.Run("a higher score trends improving", func(t *testing.T) {
		p.AddEvaluation(completedEval("eval_2", base.Add(24*time.Hour), 2.5, 2, 0.8))

		tr := p.CurrentScores.Trending
		assert.Equal(t, TrendImproving, tr.Trend)
		assert.Equal(t, 0.5, tr.ScoreChange)
		assert.Equal(t, -1, tr.PriorityChange)
		assert.InDelta(t, 0.1, tr.ConfidenceChange, 1e-9)
	})

	t.Run("changes within the band trend stable", func(t *testing.T) {
		p.AddEvaluation(completedEval("eval_3", base.Add(48*time.Hour), 2.55, 2, 0.8))
		assert.Equal(t, TrendStable, p.CurrentScores.Trending.Trend)
		assert.Equal(t, 0.05, p.CurrentScores.Trending.ScoreChange)
	})

	t.Run("a lower score trends declining", func(t *testing.T) {
		p.AddEvaluation(completedEval("eval_4", base.Add(72*time.Hour), 1.9, 3, 0.6))
		assert.Equal(t, TrendDeclining, p.CurrentScores.Trending.Trend)
		assert.Equal(t, -0.65, p.CurrentScores.Trending.ScoreChange)
		assert.Equal(t, 1, p.CurrentScores.Trending.PriorityChange)
	})

	t.Run("re-adding an attached evaluation does not duplicate it", func(t *testing.T) {
		before := len(p.Evaluations)
		p.AddEvaluation(p.Evaluations[0])
		assert.Len(t, p.Evaluations, before)
	})

	t.Run("scoreless evaluations leave the snapshot alone", func(t *testing.T) {
		snapshot := p.CurrentScores
		p.AddEvaluation(&Evaluation{ID: "eval_draft", Status: EvaluationDraft, CreatedAt: base})
		assert.Same(t, snapshot, p.CurrentScores)
	})
}

func TestProject_EvaluationQueries(t *testing.T) {
	p, err := NewProject(validRecord())
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	// Deliberately appended out of completion order.
	p.AddEvaluation(completedEval("eval_mid", base.Add(24*time.Hour), 2.0, 3, 0.7))
	p.AddEvaluation(completedEval("eval_old", base, 1.0, 4, 0.5))
	p.AddEvaluation(completedEval("eval_new", base.Add(48*time.Hour), 3.0, 2, 0.9))

	t.Run("current evaluation is the latest by completion time", func(t *testing.T) {
		current := p.GetCurrentEvaluation()
		require.NotNil(t, current)
		assert.Equal(t, "eval_new", current.ID)
	})

	t.Run("history is sorted newest first by creation time", func(t *testing.T) {
		history := p.GetEvaluationHistory()
		require.Len(t, history, 3)
		assert.Equal(t, "eval_new", history[0].ID)
		assert.Equal(t, "eval_mid", history[1].ID)
		assert.Equal(t, "eval_old", history[2].ID)

		// The underlying slice keeps its append order.
		assert.Equal(t, "eval_mid", p.Evaluations[0].ID)
	})

	t.Run("no completed evaluations yields nil", func(t *testing.T) {
		empty, err := NewProject(validRecord())
		require.NoError(t, err)
		assert.Nil(t, empty.GetCurrentEvaluation())
	})
}

func TestProject_RecordRoundTrip(t *testing.T) {
	rec := validRecord()
	p, err := NewProject(rec)
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	p.AddEvaluation(completedEval("eval_1", base, 2.0, 3, 0.7))
	p.AddEvaluation(completedEval("eval_2", base.Add(24*time.Hour), 2.5, 2, 0.8))
	p.AddEvaluation(&Evaluation{
		ID:        "eval_open",
		Status:    EvaluationInProgress,
		CreatedAt: base.Add(48 * time.Hour),
		StartedAt: base.Add(48 * time.Hour),
		Evaluator: Evaluator{Type: EvaluatorHuman, Name: "Dana Reyes"},
	})

	raw, err := json.Marshal(p.ToRecord())
	require.NoError(t, err)

	var decoded ProjectRecord
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "eval_open", decoded.Metadata.Evaluations.Current.ID)
	require.Len(t, decoded.Metadata.Evaluations.History, 2)

	restored, err := NewProject(&decoded)
	require.NoError(t, err)

	assert.Equal(t, p.ID, restored.ID)
	assert.Equal(t, p.Key, restored.Key)
	assert.Equal(t, p.Name, restored.Name)
	assert.Equal(t, p.Business.Department, restored.Business.Department)
	require.NotNil(t, restored.CurrentScores)
	assert.Equal(t, "eval_2", restored.CurrentScores.BasedOnEvaluation)
	assert.Equal(t, 2.5, restored.CurrentScores.Overall.FinalScore)

	wantHistory := p.GetEvaluationHistory()
	gotHistory := restored.GetEvaluationHistory()
	require.Len(t, gotHistory, len(wantHistory))
	for i := range wantHistory {
		assert.Equal(t, wantHistory[i].ID, gotHistory[i].ID)
	}
}

func TestProject_SerializeEvaluations(t *testing.T) {
	p, err := NewProject(validRecord())
	require.NoError(t, err)

	t.Run("nil when nothing to serialize", func(t *testing.T) {
		assert.Nil(t, p.ToRecord().Metadata.Evaluations)
	})

	t.Run("drafts are dropped from the record", func(t *testing.T) {
		p.AddEvaluation(&Evaluation{ID: "eval_draft", Status: EvaluationDraft})
		assert.Nil(t, p.ToRecord().Metadata.Evaluations)
	})
}

func TestProject_CreateFromTemplate(t *testing.T) {
	rec := validRecord()
	rec.Metadata.Project.IsTemplate = true
	rec.Metadata.Project.TemplateType = "standard"
	rec.Metadata.Project.ProtectionLevel = ProtectionReadOnly
	rec.Metadata.Project.CalibrationData = map[string]any{"sampleScores": 12}
	rec.Metadata.Project.Status = StatusApproved
	rec.Metadata.Project.Version = "3.2.0"
	rec.Metadata.Tags = []string{"nlp", "pilot"}

	tmpl, err := NewProject(rec)
	require.NoError(t, err)
	tmpl.AddEvaluation(completedEval("eval_tmpl", time.Now().UTC(), 3.0, 2, 0.9))

	t.Run("clone is a fresh draft", func(t *testing.T) {
		clone, err := tmpl.CreateFromTemplate()
		require.NoError(t, err)

		assert.NotEqual(t, tmpl.ID, clone.ID)
		assert.True(t, strings.HasSuffix(clone.ID, "_customer_churn_prediction"))
		assert.Empty(t, clone.Key)
		assert.False(t, clone.IsTemplate)
		assert.Empty(t, clone.TemplateType)
		assert.Empty(t, clone.ProtectionLevel)
		assert.Nil(t, clone.CalibrationData)
		assert.Equal(t, StatusDraft, clone.Status)
		assert.Equal(t, "1.0.0", clone.Version)
		assert.Empty(t, clone.Evaluations)
		assert.Nil(t, clone.CurrentScores)

		// Business content carries over.
		assert.Equal(t, tmpl.Name, clone.Name)
		assert.Equal(t, tmpl.Business.Department, clone.Business.Department)
		assert.Equal(t, tmpl.Tags, clone.Tags)
	})

	t.Run("non-templates cannot be cloned", func(t *testing.T) {
		p, err := NewProject(validRecord())
		require.NoError(t, err)
		_, err = p.CreateFromTemplate()
		assert.ErrorIs(t, err, ErrNotATemplate)
	})
}

func TestGenerateProjectID(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 0, 0, time.UTC)

	assert.Equal(t, "20250102_1504_ai_chatbot_", GenerateProjectID("AI Chatbot!", at))
	assert.Equal(t, "20250102_1504_fraud_detection_v2", GenerateProjectID("Fraud Detection v2", at))

	long := GenerateProjectID(strings.Repeat("x", 50), at)
	assert.Equal(t, "20250102_1504_"+strings.Repeat("x", 30), long)
}

func TestNewEvaluationID(t *testing.T) {
	a := NewEvaluationID()
	b := NewEvaluationID()

	assert.True(t, strings.HasPrefix(a, "eval_"))
	assert.NotEqual(t, a, b)
}
