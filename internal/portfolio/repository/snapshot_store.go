package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
)

const (
	projectKeyPrefix = "portfolio:project:" // Serialized record: portfolio:project:{id}
	projectIndexKey  = "portfolio:projects" // Set of all stored project ids
)

// SnapshotStore persists serialized project records in Redis so the
// in-memory repository can be rebuilt after a restart. Records are
// stored whole; the in-memory repo stays the source of truth while the
// process runs.
type SnapshotStore struct {
	client *redis.Client
}

func NewSnapshotStore(client *redis.Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save writes a serialized project record and indexes its id
// atomically. Callers pass records, not live projects, so nothing here
// reads state a concurrent mutation could be writing.
func (s *SnapshotStore) Save(ctx context.Context, rec *domain.ProjectRecord) error {
	id := rec.Metadata.Project.ID
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal project %s: %w", id, err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, projectKeyPrefix+id, raw, 0)
	pipe.SAdd(ctx, projectIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save project snapshot: %w", err)
	}
	return nil
}

// Load reads one project record back into a Project.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*domain.Project, error) {
	data, err := s.client.Get(ctx, projectKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project snapshot: %w", err)
	}

	var rec domain.ProjectRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal project snapshot: %w", err)
	}
	return domain.NewProject(&rec)
}

// LoadAll restores every stored project. Ids whose record has gone
// missing are skipped.
func (s *SnapshotStore) LoadAll(ctx context.Context) ([]*domain.Project, error) {
	ids, err := s.client.SMembers(ctx, projectIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list project snapshots: %w", err)
	}

	out := make([]*domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.Load(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Delete removes the record and its index entry.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, projectKeyPrefix+id)
	pipe.SRem(ctx, projectIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete project snapshot: %w", err)
	}
	return nil
}
