package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/metrics-engine/internal/http/handlers"
	httpMW "github.com/yungbote/metrics-engine/internal/http/middleware"
	"github.com/yungbote/metrics-engine/internal/observability"
)

type RouterConfig struct {
	HealthHandler  *httpH.HealthHandler
	CatalogHandler *httpH.CatalogHandler
	RunsHandler    *httpH.RunsHandler
	EventsHandler  *httpH.EventsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware(observability.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.CatalogHandler != nil {
			api.POST("/series", cfg.CatalogHandler.CreateSeries)
			api.GET("/series", cfg.CatalogHandler.ListSeries)
			api.POST("/datasets", cfg.CatalogHandler.CreateDataset)
			api.GET("/datasets", cfg.CatalogHandler.ListDatasets)
			api.POST("/metrics", cfg.CatalogHandler.CreateMetric)
			api.GET("/metrics", cfg.CatalogHandler.ListMetrics)
		}

		if cfg.RunsHandler != nil {
			api.GET("/runs", cfg.RunsHandler.ListRuns)
			api.GET("/runs/:id", cfg.RunsHandler.GetRun)
		}

		// Manual re-drive of queue payloads.
		if cfg.EventsHandler != nil {
			api.POST("/events/projection-update", cfg.EventsHandler.ProjectionUpdate)
		}
	}

	return r
}
