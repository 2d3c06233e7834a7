package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	"github.com/yungbote/metrics-engine/internal/services"
)

type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalogSvc services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogSvc}
}

type createSeriesRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// POST /api/v1/series
func (h *CatalogHandler) CreateSeries(c *gin.Context) {
	var req createSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	series, err := h.catalog.CreateSeries(c.Request.Context(), &types.Series{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	RespondCreated(c, gin.H{"series": series})
}

// GET /api/v1/series
func (h *CatalogHandler) ListSeries(c *gin.Context) {
	series, err := h.catalog.ListSeries(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"series": series})
}

type createDatasetRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	SeriesCodes []string `json:"seriesCodes"`
}

// POST /api/v1/datasets
func (h *CatalogHandler) CreateDataset(c *gin.Context) {
	var req createDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	dataset, err := h.catalog.CreateDataset(c.Request.Context(), &types.Dataset{
		Name:        req.Name,
		Description: req.Description,
	}, req.SeriesCodes)
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	RespondCreated(c, gin.H{"dataset": dataset})
}

// GET /api/v1/datasets
func (h *CatalogHandler) ListDatasets(c *gin.Context) {
	datasets, err := h.catalog.ListDatasets(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"datasets": datasets})
}

type createMetricRequest struct {
	Code           string          `json:"code" binding:"required"`
	ExpressionType string          `json:"expressionType" binding:"required"`
	ExpressionJSON json.RawMessage `json:"expressionJson" binding:"required"`
	Frequency      string          `json:"frequency"`
	Unit           string          `json:"unit"`
	Description    string          `json:"description"`
}

// POST /api/v1/metrics
func (h *CatalogHandler) CreateMetric(c *gin.Context) {
	var req createMetricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	metric, err := h.catalog.CreateMetric(c.Request.Context(), &types.Metric{
		Code:           req.Code,
		ExpressionType: catalog.ExpressionType(req.ExpressionType),
		ExpressionJSON: datatypes.JSON(req.ExpressionJSON),
		Frequency:      req.Frequency,
		Unit:           req.Unit,
		Description:    req.Description,
	})
	if err != nil {
		respondCatalogError(c, err)
		return
	}
	RespondCreated(c, gin.H{"metric": metric})
}

// GET /api/v1/metrics
func (h *CatalogHandler) ListMetrics(c *gin.Context) {
	metrics, err := h.catalog.ListMetrics(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"metrics": metrics})
}

func respondCatalogError(c *gin.Context, err error) {
	var validation *catalog.ValidationError
	if errors.As(err, &validation) {
		RespondError(c, http.StatusUnprocessableEntity, "validation_failed", err)
		return
	}
	var notFound *catalog.SeriesNotFoundError
	if errors.As(err, &notFound) {
		RespondError(c, http.StatusUnprocessableEntity, "series_not_found", err)
		return
	}
	RespondError(c, http.StatusBadRequest, "request_failed", err)
}
