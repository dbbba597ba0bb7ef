package repository

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

func scored(final float64, priority int) *domain.CurrentScores {
	return &domain.CurrentScores{
		Overall: scoring.Overall{FinalScore: final, Priority: priority, Confidence: 0.8},
	}
}

func seedRepo(t *testing.T) *Repo {
	t.Helper()
	r := NewRepo()
	r.Save(&domain.Project{
		ID: "p1", Key: "AI-001", Name: "Churn Prediction",
		Status:         domain.StatusApproved,
		Business:       domain.BusinessContext{Department: "Marketing"},
		Classification: domain.Classification{Category: "machine_learning"},
		CurrentScores:  scored(3.2, 1),
	})
	r.Save(&domain.Project{
		ID: "p2", Key: "AI-002", Name: "Invoice OCR",
		Status:         domain.StatusDraft,
		Business:       domain.BusinessContext{Department: "Finance"},
		Classification: domain.Classification{Category: "computer_vision"},
		CurrentScores:  scored(1.4, 3),
	})
	r.Save(&domain.Project{
		ID: "p3", Name: "Support Copilot",
		Status:         domain.StatusDraft,
		Business:       domain.BusinessContext{Department: "Marketing"},
		Classification: domain.Classification{Category: "nlp"},
	})
	r.Save(&domain.Project{
		ID: "t1", Name: "Standard Template", IsTemplate: true, TemplateType: "standard",
	})
	return r
}

func TestRepo_SaveAndFind(t *testing.T) {
	r := seedRepo(t)

	t.Run("find by id spans both partitions", func(t *testing.T) {
		p, err := r.FindByID("p1")
		require.NoError(t, err)
		assert.Equal(t, "Churn Prediction", p.Name)

		tmpl, err := r.FindByID("t1")
		require.NoError(t, err)
		assert.True(t, tmpl.IsTemplate)

		_, err = r.FindByID("nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find by key", func(t *testing.T) {
		p, err := r.FindByKey("AI-002")
		require.NoError(t, err)
		assert.Equal(t, "p2", p.ID)

		_, err = r.FindByKey("AI-999")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// An empty key never matches, even though p3 and t1 carry one.
		_, err = r.FindByKey("")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("partitions stay separate", func(t *testing.T) {
		assert.Len(t, r.FindAll(), 3)
		require.Len(t, r.FindTemplates(), 1)
		assert.Equal(t, "t1", r.FindTemplates()[0].ID)
	})

	t.Run("save bumps UpdatedAt", func(t *testing.T) {
		p, err := r.FindByID("p1")
		require.NoError(t, err)
		before := p.UpdatedAt
		r.Save(p)
		assert.False(t, p.UpdatedAt.Before(before))
	})
}

func TestRepo_Mutate(t *testing.T) {
	r := seedRepo(t)

	t.Run("applies the mutation under the lock", func(t *testing.T) {
		rec, err := r.Mutate("p2", func(p *domain.Project) error {
			p.Status = domain.StatusInProgress
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, rec.Metadata.Project.Status)

		got, err := r.FindByID("p2")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, got.Status)
	})

	t.Run("propagates the callback error", func(t *testing.T) {
		_, err := r.Mutate("p2", func(p *domain.Project) error {
			return domain.ErrAlreadyCompleted
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := r.Mutate("nope", func(p *domain.Project) error { return nil })
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRepo_Delete(t *testing.T) {
	r := seedRepo(t)

	t.Run("missing project", func(t *testing.T) {
		assert.ErrorIs(t, r.Delete("nope"), domain.ErrNotFound)
	})

	t.Run("approved projects are protected", func(t *testing.T) {
		err := r.Delete("p1")
		var forbidden *domain.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
		assert.Equal(t, "Cannot delete project with status: approved", forbidden.Reason)
	})

	t.Run("templates are protected", func(t *testing.T) {
		err := r.Delete("t1")
		var forbidden *domain.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
		assert.Equal(t, "Templates cannot be deleted", forbidden.Reason)
	})

	t.Run("drafts delete cleanly", func(t *testing.T) {
		require.NoError(t, r.Delete("p2"))
		_, err := r.FindByID("p2")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Len(t, r.FindAll(), 2)
	})
}

func TestRepo_Query(t *testing.T) {
	r := seedRepo(t)

	ids := func(projects []*domain.Project) []string {
		out := make([]string, 0, len(projects))
		for _, p := range projects {
			out = append(out, p.ID)
		}
		return out
	}

	t.Run("no filters returns all live projects", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, ids(r.Query(Filters{})))
	})

	t.Run("filters are conjunctive", func(t *testing.T) {
		got := r.Query(Filters{Status: domain.StatusDraft, Department: "Marketing"})
		assert.ElementsMatch(t, []string{"p3"}, ids(got))
	})

	t.Run("by category", func(t *testing.T) {
		got := r.Query(Filters{Category: "computer_vision"})
		assert.ElementsMatch(t, []string{"p2"}, ids(got))
	})

	t.Run("by priority", func(t *testing.T) {
		got := r.Query(Filters{Priority: 1})
		assert.ElementsMatch(t, []string{"p1"}, ids(got))
	})

	t.Run("score range is inclusive", func(t *testing.T) {
		min, max := 1.4, 3.2
		got := r.Query(Filters{MinScore: &min, MaxScore: &max})
		assert.ElementsMatch(t, []string{"p1", "p2"}, ids(got))

		tighter := 2.0
		got = r.Query(Filters{MinScore: &tighter})
		assert.ElementsMatch(t, []string{"p1"}, ids(got))
	})

	t.Run("unscored projects never match score or priority filters", func(t *testing.T) {
		min := -10.0
		assert.Empty(t, ids(r.Query(Filters{MinScore: &min, Department: "Marketing", Status: domain.StatusDraft})))
		assert.Empty(t, ids(r.Query(Filters{Priority: 3, Category: "nlp"})))
	})

	t.Run("templates never appear in queries", func(t *testing.T) {
		assert.NotContains(t, ids(r.Query(Filters{})), "t1")
	})
}

func finishedEvaluation(id string) *domain.Evaluation {
	eval := domain.NewEvaluation(id, "quick_assessment", domain.Evaluator{Type: "human", Name: "Dana"})
	_ = eval.Complete(&scoring.ScoreSet{Overall: scoring.Overall{FinalScore: 2.5, Priority: 2, Confidence: 0.7}}, nil)
	return eval
}

func TestRepo_Records(t *testing.T) {
	r := seedRepo(t)

	t.Run("find record spans both partitions", func(t *testing.T) {
		rec, err := r.FindRecord("p1")
		require.NoError(t, err)
		assert.Equal(t, "Churn Prediction", rec.Metadata.Project.Name)

		tmpl, err := r.FindRecord("t1")
		require.NoError(t, err)
		assert.True(t, tmpl.Metadata.Project.IsTemplate)

		_, err = r.FindRecord("nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("records are detached from the live project", func(t *testing.T) {
		rec, err := r.FindRecord("p1")
		require.NoError(t, err)

		_, err = r.Mutate("p1", func(p *domain.Project) error {
			p.Name = "Renamed"
			p.AddEvaluation(finishedEvaluation("eval_detached"))
			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, "Churn Prediction", rec.Metadata.Project.Name)
		assert.Nil(t, rec.Metadata.Evaluations)
	})

	t.Run("query records applies the same filters", func(t *testing.T) {
		recs := r.QueryRecords(Filters{Department: "Marketing"})
		got := make([]string, 0, len(recs))
		for _, rec := range recs {
			got = append(got, rec.Metadata.Project.ID)
		}
		assert.ElementsMatch(t, []string{"p1", "p3"}, got)
	})

	t.Run("template records", func(t *testing.T) {
		recs := r.TemplateRecords()
		require.Len(t, recs, 1)
		assert.Equal(t, "t1", recs[0].Metadata.Project.ID)
	})

	t.Run("evaluation history hands out copies", func(t *testing.T) {
		history, err := r.EvaluationHistory("p1")
		require.NoError(t, err)
		require.Len(t, history, 1)

		history[0].Status = "tampered"

		again, err := r.EvaluationHistory("p1")
		require.NoError(t, err)
		assert.Equal(t, domain.EvaluationCompleted, again[0].Status)

		_, err = r.EvaluationHistory("nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRepo_SaveClone(t *testing.T) {
	r := seedRepo(t)

	t.Run("assigns the next free key", func(t *testing.T) {
		rec := r.SaveClone(&domain.Project{ID: "c1", Name: "Clone One"})
		assert.Equal(t, "AI-003", rec.Metadata.Project.Key)

		rec = r.SaveClone(&domain.Project{ID: "c2", Name: "Clone Two"})
		assert.Equal(t, "AI-004", rec.Metadata.Project.Key)
	})

	t.Run("skips keys already taken", func(t *testing.T) {
		r.Save(&domain.Project{ID: "manual", Name: "Manual", Key: "AI-005"})
		rec := r.SaveClone(&domain.Project{ID: "c3", Name: "Clone Three"})
		assert.Equal(t, "AI-006", rec.Metadata.Project.Key)
	})

	t.Run("suffixes a taken id", func(t *testing.T) {
		rec := r.SaveClone(&domain.Project{ID: "c1", Name: "Same Minute"})
		assert.Equal(t, "c1_2", rec.Metadata.Project.ID)

		rec = r.SaveClone(&domain.Project{ID: "c1", Name: "Same Minute Again"})
		assert.Equal(t, "c1_3", rec.Metadata.Project.ID)
	})
}

func TestRepo_RecordReadsDuringMutation(t *testing.T) {
	const iterations = 200

	r := seedRepo(t)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			_, err := r.Mutate("p1", func(p *domain.Project) error {
				p.AddEvaluation(finishedEvaluation(fmt.Sprintf("eval_%d", i)))
				return nil
			})
			assert.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			rec, err := r.FindRecord("p1")
			if !assert.NoError(t, err) {
				return
			}
			_, err = json.Marshal(rec)
			assert.NoError(t, err)
		}
	}()

	wg.Wait()

	history, err := r.EvaluationHistory("p1")
	require.NoError(t, err)
	assert.Len(t, history, iterations)
}
