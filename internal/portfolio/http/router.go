package http

import "github.com/gin-gonic/gin"

// Register attaches portfolio routes to the given router group.
func (h *Handler) Register(api *gin.RouterGroup) {
	projects := api.Group("/projects")
	projects.GET("", h.list)
	projects.POST("", h.create)
	projects.GET("/:id", h.get)
	projects.PUT("/:id", h.update)
	projects.DELETE("/:id", h.delete)

	projects.GET("/:id/evaluations", h.evaluationHistory)
	projects.POST("/:id/evaluations", h.startEvaluation)
	projects.POST("/:id/evaluations/:evaluation_id/complete", h.completeEvaluation)

	templates := api.Group("/templates")
	templates.GET("", h.listTemplates)
	templates.POST("/:id/clone", h.cloneTemplate)

	api.GET("/rubrics", h.listRubrics)
}
