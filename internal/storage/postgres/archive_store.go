package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
)

// ArchivedEvaluation is one archived row: the full evaluation document
// plus the columns the dashboard filters on.
type ArchivedEvaluation struct {
	ID           string
	ProjectID    string
	EvaluationID string
	FinalScore   float64
	Priority     int
	CompletedAt  time.Time
	Evaluation   *domain.Evaluation
	ArchivedAt   time.Time
}

// ArchiveStore keeps an append-only copy of completed evaluations.
// Completed evaluations never change, so rows are written once; the
// unique evaluation_id makes re-archiving a no-op.
type ArchiveStore struct {
	db *sql.DB
}

func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// Insert archives a completed evaluation of the given project.
func (s *ArchiveStore) Insert(ctx context.Context, projectID string, e *domain.Evaluation) error {
	if !e.IsCompleted() || e.Scores == nil || e.CompletedAt == nil {
		return fmt.Errorf("evaluation %s is not completed", e.ID)
	}

	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal evaluation %s: %w", e.ID, err)
	}

	const q = `
INSERT INTO evaluation_archive (id, project_id, evaluation_id, final_score, priority, completed_at, evaluation)
VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
ON CONFLICT (evaluation_id) DO NOTHING;
`
	_, err = s.db.ExecContext(ctx, q,
		uuid.New().String(),
		projectID,
		e.ID,
		e.Scores.Overall.FinalScore,
		e.Scores.Overall.Priority,
		*e.CompletedAt,
		doc,
	)
	if err != nil {
		return fmt.Errorf("archive evaluation %s: %w", e.ID, err)
	}
	return nil
}

// ListByProject returns a project's archived evaluations, newest first.
func (s *ArchiveStore) ListByProject(ctx context.Context, projectID string) ([]ArchivedEvaluation, error) {
	const q = `
SELECT id, project_id, evaluation_id, final_score, priority, completed_at, evaluation, archived_at
FROM evaluation_archive
WHERE project_id = $1
ORDER BY completed_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list archived evaluations: %w", err)
	}
	defer rows.Close()

	out := make([]ArchivedEvaluation, 0, 8)
	for rows.Next() {
		var a ArchivedEvaluation
		var doc []byte
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.EvaluationID, &a.FinalScore, &a.Priority, &a.CompletedAt, &doc, &a.ArchivedAt); err != nil {
			return nil, err
		}
		var e domain.Evaluation
		if err := json.Unmarshal(doc, &e); err != nil {
			return nil, fmt.Errorf("unmarshal archived evaluation %s: %w", a.EvaluationID, err)
		}
		a.Evaluation = &e
		out = append(out, a)
	}
	return out, rows.Err()
}
