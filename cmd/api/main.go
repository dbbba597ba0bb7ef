package main

import (
	"context"
	"database/sql"
	"log"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ai-portfolio/portfolio-backend/config"
	"github.com/ai-portfolio/portfolio-backend/internal/bootstrap"
	cronjob "github.com/ai-portfolio/portfolio-backend/internal/portfolio/cron"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/repository"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/service"
	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
	"github.com/ai-portfolio/portfolio-backend/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	var redisClient *goredis.Client
	var snapshots *repository.SnapshotStore
	if cfg.Redis.Addr != "" {
		redisClient, err = bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		snapshots = repository.NewSnapshotStore(redisClient)
	} else {
		log.Println("REDIS_ADDR not set, running without snapshot persistence")
	}

	var db *sql.DB
	var archive *postgres.ArchiveStore
	if cfg.Database.DSN != "" {
		db, err = postgres.NewConnection(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		archive = postgres.NewArchiveStore(db)
	} else {
		log.Println("DB_DSN not set, running without the evaluation archive")
	}

	rubrics := scoring.NewRegistry()
	if cfg.Portfolio.RubricDir != "" {
		if err := rubrics.LoadDir(cfg.Portfolio.RubricDir); err != nil {
			log.Fatalf("rubrics: %v", err)
		}
	}

	repo := repository.NewRepo()
	projects := service.NewPortfolioService(repo, snapshots)
	evaluations := service.NewEvaluationService(repo, rubrics, projects, archive)

	if n, err := projects.Restore(ctx); err != nil {
		log.Fatalf("restore snapshots: %v", err)
	} else if n > 0 {
		log.Printf("Restored %d projects from snapshots", n)
	}

	if cfg.Portfolio.ArchiveCron {
		cronjob.NewScheduler(repo, snapshots, archive, cfg.Portfolio.CronSchedule).Start()
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  "portfolio-backend",
		Version:      cfg.App.Version,
		AllowOrigins: cfg.Server.AllowOrigins,
		Redis:        redisClient,
		DB:           db,
		Projects:     projects,
		Evaluations:  evaluations,
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
