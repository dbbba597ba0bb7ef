package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/repository"
	"github.com/ai-portfolio/portfolio-backend/internal/storage/postgres"
)

// Scheduler runs the nightly portfolio sweep: every project snapshot is
// re-persisted and any completed evaluation missed at completion time is
// copied to the archive. Archive inserts are idempotent, so re-running
// the sweep is safe.
type Scheduler struct {
	repo      *repository.Repo
	snapshots *repository.SnapshotStore
	archive   *postgres.ArchiveStore
	schedule  string
}

func NewScheduler(repo *repository.Repo, snapshots *repository.SnapshotStore, archive *postgres.ArchiveStore, schedule string) *Scheduler {
	return &Scheduler{
		repo:      repo,
		snapshots: snapshots,
		archive:   archive,
		schedule:  schedule,
	}
}

// Start initializes the cron task.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Printf("Cron scheduler started (schedule %q)", s.schedule)
	c.Start()
}

// Sweep runs one pass over every project and template. It works on
// record snapshots, so a sweep never touches live project state while
// handlers are mutating it.
func (s *Scheduler) Sweep(ctx context.Context) {
	log.Println("Portfolio sweep started (snapshots + archive)...")

	recs := s.repo.QueryRecords(repository.Filters{})
	recs = append(recs, s.repo.TemplateRecords()...)

	archived := 0
	for _, rec := range recs {
		if s.snapshots != nil {
			if err := s.snapshots.Save(ctx, rec); err != nil {
				log.Printf("Sweep: snapshot %s failed: %v", rec.Metadata.Project.ID, err)
			}
		}
		if s.archive != nil {
			archived += s.archiveCompleted(ctx, rec)
		}
	}

	log.Printf("Portfolio sweep completed (%d projects, %d evaluations archived) at: %s",
		len(recs), archived, time.Now().Format(time.RFC1123))
}

func (s *Scheduler) archiveCompleted(ctx context.Context, rec *domain.ProjectRecord) int {
	if rec.Metadata.Evaluations == nil {
		return 0
	}
	n := 0
	for _, e := range rec.Metadata.Evaluations.All() {
		if !e.IsCompleted() {
			continue
		}
		if err := s.archive.Insert(ctx, rec.Metadata.Project.ID, e); err != nil {
			log.Printf("Sweep: archive %s failed: %v", e.ID, err)
			continue
		}
		n++
	}
	return n
}
