package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/services"
)

type RunsHandler struct {
	runs services.RunQueryService
}

func NewRunsHandler(runs services.RunQueryService) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// GET /api/v1/runs/:id
func (h *RunsHandler) GetRun(c *gin.Context) {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, pendings, err := h.runs.GetRun(dbctx.Context{Ctx: c.Request.Context()}, runID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	if run == nil {
		RespondError(c, http.StatusNotFound, "run_not_found", nil)
		return
	}
	RespondOK(c, gin.H{"run": run, "pending_datasets": pendings})
}

// GET /api/v1/runs?limit=50
func (h *RunsHandler) ListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
		limit = parsed
	}
	runs, err := h.runs.ListRecentRuns(dbctx.Context{Ctx: c.Request.Context()}, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"runs": runs})
}
