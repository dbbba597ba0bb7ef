package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/domain"
	"github.com/ai-portfolio/portfolio-backend/internal/portfolio/repository"
	"github.com/ai-portfolio/portfolio-backend/internal/scoring"
)

func (h *Handler) list(c *gin.Context) {
	filters := repository.Filters{
		Status:     c.Query("status"),
		Department: c.Query("department"),
		Category:   c.Query("category"),
	}
	if raw := c.Query("priority"); raw != "" {
		priority, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid priority"})
			return
		}
		filters.Priority = priority
	}
	var err error
	if filters.MinScore, err = parseScore(c.Query("min_score")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid min_score"})
		return
	}
	if filters.MaxScore, err = parseScore(c.Query("max_score")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid max_score"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": h.projects.QueryRecords(filters)})
}

func (h *Handler) create(c *gin.Context) {
	var rec domain.ProjectRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	out, err := h.projects.Create(c.Request.Context(), &rec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": out})
}

func (h *Handler) get(c *gin.Context) {
	rec, err := h.projects.GetRecord(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": rec})
}

func (h *Handler) update(c *gin.Context) {
	var rec domain.ProjectRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	out, err := h.projects.Update(c.Request.Context(), c.Param("id"), &rec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": out})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "templates": h.projects.TemplateRecords()})
}

func (h *Handler) cloneTemplate(c *gin.Context) {
	out, err := h.projects.CloneTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": out})
}

type startEvaluationReq struct {
	Type      string           `json:"type"`
	Evaluator domain.Evaluator `json:"evaluator"`
}

func (h *Handler) startEvaluation(c *gin.Context) {
	var req startEvaluationReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	eval, err := h.evaluations.Start(c.Request.Context(), c.Param("id"), req.Type, req.Evaluator)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "evaluation": eval})
}

type completeEvaluationReq struct {
	Ratings         scoring.Ratings `json:"ratings"`
	Recommendations []string        `json:"recommendations"`
}

func (h *Handler) completeEvaluation(c *gin.Context) {
	var req completeEvaluationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	eval, err := h.evaluations.Complete(c.Request.Context(), c.Param("id"), c.Param("evaluation_id"), req.Ratings, req.Recommendations)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "evaluation": eval})
}

func (h *Handler) evaluationHistory(c *gin.Context) {
	history, err := h.evaluations.History(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "evaluations": history})
}

func (h *Handler) listRubrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "rubrics": h.evaluations.RubricIDs()})
}

// respondError maps core errors onto HTTP statuses. Forbidden reasons
// pass through verbatim; callers display them.
func respondError(c *gin.Context, err error) {
	var schemaErr *domain.SchemaError
	var forbidden *domain.ForbiddenError

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": schemaErr.Error(), "problems": schemaErr.Problems})
	case errors.Is(err, scoring.ErrUnknownRubric):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEvaluationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.As(err, &forbidden), errors.Is(err, domain.ErrNotATemplate):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func parseScore(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
