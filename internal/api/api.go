// Package api exposes the article engine over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/newsdesk-dev/newsdesk-queue/internal/engine"
	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

type Handler struct {
	Engine *engine.Engine
}

// Register wires all article routes under the given group.
func (h *Handler) Register(g *gin.RouterGroup) {
	g.GET("/health", h.Health)
	g.GET("/articles", h.ListArticles)
	g.POST("/articles", h.CreateArticle)
	g.GET("/articles/:id", h.GetArticle)
	g.PATCH("/articles/:id", h.PatchArticle)
	g.POST("/articles/:id/schedule", h.ScheduleArticle)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) ListArticles(c *gin.Context) {
	params := schema.ListParams{
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "pageSize", 25),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
		Order:    c.Query("order"),
		Status:   multiQuery(c, "status"),
		Region:   multiQuery(c, "region"),
		Category: multiQuery(c, "category"),
		Priority: multiQuery(c, "priority"),
	}

	result, err := h.Engine.ListArticles(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetArticle(c *gin.Context) {
	a, err := h.Engine.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var input schema.Article
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(input.Headline) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "headline is required"})
		return
	}

	a, err := h.Engine.CreateArticle(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) PatchArticle(c *gin.Context) {
	var patch schema.ArticlePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.Engine.PatchArticle(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) ScheduleArticle(c *gin.Context) {
	var input struct {
		ScheduledAt string `json:"scheduledAt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.Engine.ScheduleArticle(c.Request.Context(), c.Param("id"), input.ScheduledAt)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrArticleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, engine.ErrInvalidScheduleTime):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// multiQuery accepts repeated parameters and comma-joined values.
func multiQuery(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
