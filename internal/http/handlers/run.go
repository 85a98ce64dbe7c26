package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/postpilot/postpilot-backend/internal/http/response"
	"github.com/postpilot/postpilot-backend/internal/pkg/dbctx"
	"github.com/postpilot/postpilot-backend/internal/services"
)

type RunHandler struct {
	workflow *services.WorkflowService
	content  *services.ContentService
}

func NewRunHandler(workflow *services.WorkflowService, content *services.ContentService) *RunHandler {
	return &RunHandler{workflow: workflow, content: content}
}

// POST /api/runs
// body: { "user_id": "...", "trigger_kind": "manual" | "scheduled" }
func (h *RunHandler) StartRun(c *gin.Context) {
	var req struct {
		UserID      string `json:"user_id"`
		TriggerKind string `json:"trigger_kind"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	if req.TriggerKind == "" {
		req.TriggerKind = "manual"
	}

	run, err := h.workflow.Run(dbctx.New(c.Request.Context()), userID, req.TriggerKind)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			response.RespondError(c, http.StatusConflict, "run_in_progress", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "run_failed", err)
		return
	}
	response.RespondCreated(c, gin.H{"run": run})
}

// GET /api/runs?user_id=...&limit=...
func (h *RunHandler) ListRuns(c *gin.Context) {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	runs, err := h.content.ListRuns(dbctx.New(c.Request.Context()), userID, limit)
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, "list_runs_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}

// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}

	run, ideas, err := h.content.GetRun(dbctx.New(c.Request.Context()), id)
	if err != nil {
		if errors.Is(err, services.ErrRunNotFound) {
			response.RespondError(c, http.StatusNotFound, "run_not_found", err)
			return
		}
		response.RespondError(c, http.StatusInternalServerError, "get_run_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"run": run, "ideas": ideas})
}
