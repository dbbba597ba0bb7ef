package service

import (
	"context"
	"log"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/repository"
	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
	"github.com/ai-portfolio/portfolio-backend/internal/storage/postgres"
)

// EvaluationService drives the evaluation lifecycle: start a draft,
// score it, complete it, and refresh the owning project's snapshot.
// The archive store is optional; completed evaluations are copied to it
// best-effort.
type EvaluationService struct {
	repo    *repository.Repo
	rubrics *scoring.Registry
	svc     *PortfolioService
	archive *postgres.ArchiveStore
}

// NewEvaluationService creates a new evaluation service.
func NewEvaluationService(repo *repository.Repo, rubrics *scoring.Registry, svc *PortfolioService, archive *postgres.ArchiveStore) *EvaluationService {
	return &EvaluationService{
		repo:    repo,
		rubrics: rubrics,
		svc:     svc,
		archive: archive,
	}
}

// Start opens a draft evaluation against the given rubric.
func (s *EvaluationService) Start(ctx context.Context, projectID, rubricID string, evaluator domain.Evaluator) (*domain.Evaluation, error) {
	if _, err := s.rubrics.Get(rubricID); err != nil {
		return nil, err
	}
	if err := evaluator.Validate(); err != nil {
		return nil, &domain.SchemaError{Problems: []string{err.Error()}}
	}

	var out domain.Evaluation
	rec, err := s.repo.Mutate(projectID, func(p *domain.Project) error {
		eval := domain.NewEvaluation(domain.NewEvaluationID(), rubricID, evaluator)
		p.AddEvaluation(eval)
		out = *eval
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.svc.persist(ctx, rec)
	return &out, nil
}

// Complete scores the draft's ratings against its rubric and finalizes
// it. The project's current scores and trend refresh in the same
// repository mutation.
func (s *EvaluationService) Complete(ctx context.Context, projectID, evaluationID string, ratings scoring.Ratings, recommendations []string) (*domain.Evaluation, error) {
	var out domain.Evaluation
	rec, err := s.repo.Mutate(projectID, func(p *domain.Project) error {
		var eval *domain.Evaluation
		for _, e := range p.Evaluations {
			if e.ID == evaluationID {
				eval = e
				break
			}
		}
		if eval == nil {
			return domain.ErrEvaluationNotFound
		}

		scores, err := s.rubrics.Calculate(ratings, eval.Type)
		if err != nil {
			return err
		}
		if err := eval.Complete(scores, recommendations); err != nil {
			return err
		}

		p.AddEvaluation(eval)
		out = *eval
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.svc.persist(ctx, rec)
	if s.archive != nil {
		if err := s.archive.Insert(ctx, projectID, &out); err != nil {
			log.Printf("Warning: failed to archive evaluation %s: %v", out.ID, err)
		}
	}
	return &out, nil
}

// History returns copies of a project's evaluations, newest first.
func (s *EvaluationService) History(projectID string) ([]*domain.Evaluation, error) {
	return s.repo.EvaluationHistory(projectID)
}

// RubricIDs lists the rubrics evaluations can be started against.
func (s *EvaluationService) RubricIDs() []string {
	return s.rubrics.IDs()
}
