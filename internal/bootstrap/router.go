package bootstrap

import (
	"database/sql"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/ai-portfolio/portfolio-backend/internal/api/http"
	"github.com/ai-portfolio/portfolio-backend/internal/api/http/middleware"
	portfoliohttp "github.com/ai-portfolio/portfolio-backend/internal/portfolio/http"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/service"
)

type RouterDeps struct {
	ServiceName  string
	Version      string
	AllowOrigins []string
	Redis        *goredis.Client
	DB           *sql.DB
	Projects     *service.PortfolioService
	Evaluations  *service.EvaluationService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowOrigins) == 1 && dep.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Request-Id")
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Redis, dep.DB)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	api.Use(middleware.RequestID())
	api.Use(middleware.RateLimit(50, 100))

	handler := portfoliohttp.New(dep.Projects, dep.Evaluations)
	handler.Register(api)

	return r
}
