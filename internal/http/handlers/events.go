package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/services"
)

// EventsHandler is the manual re-drive surface. Operators post the same
// payload the queue would deliver; the idempotency ledger makes repeat
// submissions safe.
type EventsHandler struct {
	projections services.ProjectionUpdateService
}

func NewEventsHandler(projections services.ProjectionUpdateService) *EventsHandler {
	return &EventsHandler{projections: projections}
}

type projectionUpdateRequest struct {
	DatasetID           uuid.UUID `json:"dataset_id" binding:"required"`
	Bucket              string    `json:"bucket"`
	VersionManifestPath string    `json:"version_manifest_path" binding:"required"`
	ProjectionsPath     string    `json:"projections_path" binding:"required"`
}

// POST /api/v1/events/projection-update
func (h *EventsHandler) ProjectionUpdate(c *gin.Context) {
	var req projectionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.projections.Handle(c.Request.Context(), &domainruns.ProjectionUpdateEvent{
		Event:               domainruns.EventProjectionUpdate,
		DatasetID:           req.DatasetID,
		Bucket:              req.Bucket,
		VersionManifestPath: req.VersionManifestPath,
		ProjectionsPath:     req.ProjectionsPath,
	})
	if err != nil {
		RespondError(c, http.StatusUnprocessableEntity, "processing_failed", err)
		return
	}
	RespondOK(c, result)
}
