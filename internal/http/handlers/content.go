package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/postpilot/postpilot-backend/internal/data/repos/content"
	"github.com/postpilot/postpilot-backend/internal/http/response"
	"github.com/postpilot/postpilot-backend/internal/pipeline/lifecycle"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/services"
)

type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(contentService *services.ContentService) *ContentHandler {
	return &ContentHandler{content: contentService}
}

// GET /api/content?user_id=...&state=...&platform=...&from=...&to=...
// from/to are RFC 3339 timestamps.
func (h *ContentHandler) ListContent(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}

	filter := content.ContentFilter{
		UserID:   userID,
		State:    c.Query("state"),
		Platform: c.Query("platform"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_from", err)
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_to", err)
			return
		}
		filter.To = &t
	}

	rows, err := h.content.GetByFilter(dbctx.New(c.Request.Context()), filter)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_content_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"content": rows})
}

// GET /api/content/today?user_id=...
func (h *ContentHandler) TodayContent(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	rows, err := h.content.TodayContent(dbctx.New(c.Request.Context()), userID)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_content_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"content": rows})
}

// POST /api/content/:id/transition
// body: { "state": "reviewed" | "edited" | "ready" | "published" }
func (h *ContentHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	var req struct {
		State string `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	row, err := h.content.Transition(dbctx.New(c.Request.Context()), id, req.State)
	if err != nil {
		h.respondContentError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": row})
}

// PUT /api/content/:id/body
// body: { "body": "..." }
func (h *ContentHandler) EditBody(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_content_id", err)
		return
	}
	var req struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	row, err := h.content.EditBody(dbctx.New(c.Request.Context()), id, req.Body)
	if err != nil {
		if errors.Is(err, services.ErrEmptyBody) {
			response.RespondError(c, http.StatusBadRequest, "empty_body", err)
			return
		}
		h.respondContentError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"content": row})
}

func (h *ContentHandler) respondContentError(c *gin.Context, err error) {
	var ill *lifecycle.IllegalTransitionError
	switch {
	case errors.Is(err, services.ErrContentNotFound):
		response.RespondError(c, http.StatusNotFound, "content_not_found", err)
	case errors.As(err, &ill):
		response.RespondError(c, http.StatusConflict, "illegal_transition", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "content_update_failed", err)
	}
}
