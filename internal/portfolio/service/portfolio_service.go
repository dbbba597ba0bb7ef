package service

import (
	"context"
	"log"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/repository"
)

// PortfolioService handles project-related business logic. The snapshot
// store is optional; when configured, every mutation is mirrored to it
// best-effort so the repository can be rebuilt on restart.
//
// Mutations return serialized records built inside the repository lock;
// live *Project pointers never reach callers that marshal concurrently.
type PortfolioService struct {
	repo      *repository.Repo
	snapshots *repository.SnapshotStore
}

// NewPortfolioService creates a new portfolio service.
func NewPortfolioService(repo *repository.Repo, snapshots *repository.SnapshotStore) *PortfolioService {
	return &PortfolioService{
		repo:      repo,
		snapshots: snapshots,
	}
}

// Restore loads persisted project snapshots into the repository.
func (s *PortfolioService) Restore(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}
	projects, err := s.snapshots.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range projects {
		s.repo.Save(p)
	}
	return len(projects), nil
}

// Create builds a project from an incoming record and stores it.
func (s *PortfolioService) Create(ctx context.Context, rec *domain.ProjectRecord) (*domain.ProjectRecord, error) {
	p, err := domain.NewProject(rec)
	if err != nil {
		return nil, err
	}

	out := s.repo.Save(p)
	s.persist(ctx, out)
	return out, nil
}

// Get returns the live project or template by id. Intended for callers
// inside the service layer; HTTP reads go through GetRecord.
func (s *PortfolioService) Get(id string) (*domain.Project, error) {
	return s.repo.FindByID(id)
}

// GetRecord returns a project or template serialized under the
// repository lock.
func (s *PortfolioService) GetRecord(id string) (*domain.ProjectRecord, error) {
	return s.repo.FindRecord(id)
}

// GetByKey resolves a project by its externally assigned key.
func (s *PortfolioService) GetByKey(key string) (*domain.Project, error) {
	return s.repo.FindByKey(key)
}

// List returns all live projects.
func (s *PortfolioService) List() []*domain.Project {
	return s.repo.FindAll()
}

// Templates returns all templates.
func (s *PortfolioService) Templates() []*domain.Project {
	return s.repo.FindTemplates()
}

// TemplateRecords returns all templates serialized under the
// repository lock.
func (s *PortfolioService) TemplateRecords() []*domain.ProjectRecord {
	return s.repo.TemplateRecords()
}

// QueryRecords filters live projects and serializes the matches under
// the repository lock.
func (s *PortfolioService) QueryRecords(f repository.Filters) []*domain.ProjectRecord {
	return s.repo.QueryRecords(f)
}

// Update replaces a project's record. The existing project must allow
// editing; identity and the evaluation history cannot be rewritten
// here. The permission check, history carry-over and swap all happen in
// one locked repository operation.
func (s *PortfolioService) Update(ctx context.Context, id string, rec *domain.ProjectRecord) (*domain.ProjectRecord, error) {
	out, err := s.repo.Replace(id, func(existing *domain.Project) (*domain.Project, error) {
		if decision := existing.CanEdit(); !decision.Allowed {
			return nil, &domain.ForbiddenError{Reason: decision.Reason}
		}

		rec.Metadata.Project.ID = existing.ID
		rec.Metadata.Project.IsTemplate = existing.IsTemplate
		rec.Metadata.Project.CreatedAt = existing.CreatedAt
		rec.Metadata.Evaluations = existing.ToRecord().Metadata.Evaluations
		rec.Metadata.CurrentScores = existing.CurrentScores

		return domain.NewProject(rec)
	})
	if err != nil {
		return nil, err
	}

	s.persist(ctx, out)
	return out, nil
}

// Delete removes a project when its rules allow it.
func (s *PortfolioService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, id); err != nil {
			log.Printf("Warning: failed to delete snapshot for %s: %v", id, err)
		}
	}
	return nil
}

// CloneTemplate creates a fresh draft project from a template. The
// clone is built from a record snapshot of the template, and the
// repository assigns its id and key while inserting it, so simultaneous
// clones cannot collide.
func (s *PortfolioService) CloneTemplate(ctx context.Context, templateID string) (*domain.ProjectRecord, error) {
	rec, err := s.repo.FindRecord(templateID)
	if err != nil {
		return nil, err
	}
	tpl, err := domain.NewProject(rec)
	if err != nil {
		return nil, err
	}

	clone, err := tpl.CreateFromTemplate()
	if err != nil {
		return nil, err
	}

	out := s.repo.SaveClone(clone)
	s.persist(ctx, out)
	return out, nil
}

func (s *PortfolioService) persist(ctx context.Context, rec *domain.ProjectRecord) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, rec); err != nil {
		log.Printf("Warning: failed to persist snapshot for %s: %v", rec.Metadata.Project.ID, err)
	}
}
