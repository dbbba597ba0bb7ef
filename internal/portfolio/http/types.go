package http

import (
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/service"
)

// Handler bundles the dependencies for portfolio HTTP endpoints.
type Handler struct {
	projects    *service.PortfolioService
	evaluations *service.EvaluationService
}

func New(projects *service.PortfolioService, evaluations *service.EvaluationService) *Handler {
	return &Handler{projects: projects, evaluations: evaluations}
}
