package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
)

// Filters narrows a project query. All set filters must match. The score
// range is inclusive; projects without current scores never match a
// score or priority filter.
type Filters struct {
	Status     string
	Department string
	Category   string
	Priority   int
	MinScore   *float64
	MaxScore   *float64
}

// Repo is the in-memory project store, partitioned into live projects
// and templates by the IsTemplate flag. A project never moves between
// partitions after creation.
//
// The mutex serializes mutations, so at most one mutation per project is
// ever in flight. Stored *Project pointers are live shared state:
// anything that escapes the repo for serialization goes out as a record
// built while the lock is held, never as the live pointer.
type Repo struct {
	mu        sync.RWMutex
	projects  map[string]*domain.Project
	templates map[string]*domain.Project
}

func NewRepo() *Repo {
	return &Repo{
		projects:  map[string]*domain.Project{},
		templates: map[string]*domain.Project{},
	}
}

// Save upserts a project into its partition and bumps UpdatedAt. The
// returned record is serialized before the lock is released.
func (r *Repo) Save(p *domain.Project) *domain.ProjectRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	if p.IsTemplate {
		r.templates[p.ID] = p
	} else {
		r.projects[p.ID] = p
	}
	return p.ToRecord()
}

// SaveClone stores a template clone. Id de-collision and key assignment
// happen under the write lock, so two simultaneous clones can neither
// share an id (generated ids have minute resolution) nor be handed the
// same key.
func (r *Repo) SaveClone(clone *domain.Project) *domain.ProjectRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := clone.ID
	for n := 2; ; n++ {
		if _, ok := r.projects[clone.ID]; !ok {
			if _, ok := r.templates[clone.ID]; !ok {
				break
			}
		}
		clone.ID = fmt.Sprintf("%s_%d", base, n)
	}
	clone.Key = r.nextKeyLocked()

	clone.UpdatedAt = time.Now().UTC()
	r.projects[clone.ID] = clone
	return clone.ToRecord()
}

// nextKeyLocked hands out sequential AI-NNN keys, skipping any already
// taken in either partition. Callers hold the write lock.
func (r *Repo) nextKeyLocked() string {
	taken := map[string]bool{}
	for _, p := range r.projects {
		taken[p.Key] = true
	}
	for _, p := range r.templates {
		taken[p.Key] = true
	}
	for n := 1; ; n++ {
		key := fmt.Sprintf("AI-%03d", n)
		if !taken[key] {
			return key
		}
	}
}

// FindByID resolves across both partitions. The returned pointer is the
// live project; callers that serialize use FindRecord instead.
func (r *Repo) FindByID(id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(id)
}

// FindRecord serializes a project under the read lock, so the result
// can be marshaled while mutations continue on the live project.
func (r *Repo) FindRecord(id string) (*domain.ProjectRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	return p.ToRecord(), nil
}

func (r *Repo) findLocked(id string) (*domain.Project, error) {
	if p, ok := r.projects[id]; ok {
		return p, nil
	}
	if p, ok := r.templates[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

// FindByKey resolves a project key across both partitions. Keys are
// assigned and kept unique by SaveClone; on a collision with a manually
// keyed record the first hit wins.
func (r *Repo) FindByKey(key string) (*domain.Project, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.projects {
		if p.Key == key {
			return p, nil
		}
	}
	for _, p := range r.templates {
		if p.Key == key {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// FindAll returns the live projects (templates excluded).
func (r *Repo) FindAll() []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	return out
}

// FindTemplates returns the template partition.
func (r *Repo) FindTemplates() []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Project, 0, len(r.templates))
	for _, p := range r.templates {
		out = append(out, p)
	}
	return out
}

// TemplateRecords serializes the template partition under the read
// lock.
func (r *Repo) TemplateRecords() []*domain.ProjectRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ProjectRecord, 0, len(r.templates))
	for _, p := range r.templates {
		out = append(out, p.ToRecord())
	}
	return out
}

// EvaluationHistory returns a project's evaluations sorted newest
// first, as copies taken under the read lock.
func (r *Repo) EvaluationHistory(id string) ([]*domain.Evaluation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}

	history := p.GetEvaluationHistory()
	out := make([]*domain.Evaluation, 0, len(history))
	for _, e := range history {
		ev := *e
		out = append(out, &ev)
	}
	return out, nil
}

// Mutate runs fn on the project under the write lock, so concurrent
// mutations of the same project cannot interleave. UpdatedAt is bumped
// when fn succeeds, and the returned record is serialized before the
// lock is released.
func (r *Repo) Mutate(id string, fn func(*domain.Project) error) (*domain.ProjectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	return p.ToRecord(), nil
}

// Replace swaps a stored project for the one fn builds from it, all
// under the write lock. fn must preserve the project's id and
// partition.
func (r *Repo) Replace(id string, fn func(*domain.Project) (*domain.Project, error)) (*domain.ProjectRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, err := r.findLocked(id)
	if err != nil {
		return nil, err
	}
	next, err := fn(old)
	if err != nil {
		return nil, err
	}

	next.UpdatedAt = time.Now().UTC()
	if next.IsTemplate {
		r.templates[next.ID] = next
	} else {
		r.projects[next.ID] = next
	}
	return next.ToRecord(), nil
}

// Delete removes a project if its own rules allow it: ErrNotFound when
// absent, ForbiddenError (with the reason) when deletion is blocked.
func (r *Repo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.findLocked(id)
	if err != nil {
		return err
	}

	if decision := p.CanDelete(); !decision.Allowed {
		return &domain.ForbiddenError{Reason: decision.Reason}
	}

	delete(r.projects, id)
	delete(r.templates, id)
	return nil
}

// Query applies the filters conjunctively over the live projects.
func (r *Repo) Query(f Filters) []*domain.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		if matches(p, f) {
			out = append(out, p)
		}
	}
	return out
}

// QueryRecords applies the filters and serializes every match under
// the read lock.
func (r *Repo) QueryRecords(f Filters) []*domain.ProjectRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ProjectRecord, 0, len(r.projects))
	for _, p := range r.projects {
		if matches(p, f) {
			out = append(out, p.ToRecord())
		}
	}
	return out
}

func matches(p *domain.Project, f Filters) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Department != "" && p.Business.Department != f.Department {
		return false
	}
	if f.Category != "" && p.Classification.Category != f.Category {
		return false
	}
	if f.Priority != 0 {
		if p.CurrentScores == nil || p.CurrentScores.Overall.Priority != f.Priority {
			return false
		}
	}
	if f.MinScore != nil {
		if p.CurrentScores == nil || p.CurrentScores.Overall.FinalScore < *f.MinScore {
			return false
		}
	}
	if f.MaxScore != nil {
		if p.CurrentScores == nil || p.CurrentScores.Overall.FinalScore > *f.MaxScore {
			return false
		}
	}
	return true
}
