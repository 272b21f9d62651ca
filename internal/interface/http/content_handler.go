package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkwell-labs/inkwell/internal/application"
	"github.com/inkwell-labs/inkwell/internal/domain/entity"
	"github.com/inkwell-labs/inkwell/internal/interface/middleware"
	"github.com/inkwell-labs/inkwell/pkg/response"
	"github.com/inkwell-labs/inkwell/pkg/validation"
)

type ContentHandler struct {
	Svc    *application.ContentService
	Logger *logrus.Logger
}

func NewContentHandler(svc *application.ContentService, logger *logrus.Logger) *ContentHandler {
	return &ContentHandler{Svc: svc, Logger: logger}
}

type saveContentRequest struct {
	Title            string `json:"title" binding:"required"`
	ContentType      string `json:"content_type" binding:"required"`
	Tone             string `json:"tone"`
	Audience         string `json:"audience"`
	Purpose          string `json:"purpose"`
	WordLimit        int    `json:"word_limit" binding:"gte=0"`
	GeneratedContent string `json:"generated_content" binding:"required"`
}

func entryJSON(e *entity.ContentEntry) gin.H {
	return gin.H{
		"id":                e.ID,
		"title":             e.Title,
		"content_type":      e.ContentType,
		"tone":              e.Tone,
		"audience":          e.Audience,
		"purpose":           e.Purpose,
		"word_limit":        e.WordLimit,
		"generated_content": e.GeneratedContent,
		"created_at":        e.CreatedAt,
	}
}

// Save POST /api/content/history
func (h *ContentHandler) Save(c *gin.Context) {
	email := c.GetString(middleware.CtxSubjectKey)
	var req saveContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	e, err := h.Svc.Save(c.Request.Context(), email, application.SaveContentInput{
		Title:            req.Title,
		ContentType:      req.ContentType,
		Tone:             req.Tone,
		Audience:         req.Audience,
		Purpose:          req.Purpose,
		WordLimit:        req.WordLimit,
		GeneratedContent: req.GeneratedContent,
	})
	if err != nil {
		h.Logger.WithError(err).WithField("email", email).Error("save content entry failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to save entry", nil)
		return
	}
	response.Success(c, http.StatusCreated, entryJSON(e), "entry saved", nil)
}

// List GET /api/content/history
func (h *ContentHandler) List(c *gin.Context) {
	email := c.GetString(middleware.CtxSubjectKey)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.Svc.List(c.Request.Context(), email, limit)
	if err != nil {
		h.Logger.WithError(err).WithField("email", email).Error("list content entries failed")
		response.Error[any](c, http.StatusInternalServerError, "failed to list entries", nil)
		return
	}

	out := make([]gin.H, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryJSON(e))
	}
	response.Success(c, http.StatusOK, out, "content history", map[string]any{"count": len(out)})
}

// Search GET /api/content/search?q=
func (h *ContentHandler) Search(c *gin.Context) {
	email := c.GetString(middleware.CtxSubjectKey)
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), email, q, size)
	if err != nil {
		h.Logger.WithError(err).WithField("email", email).Error("content search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}
