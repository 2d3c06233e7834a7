package app

import (
	"github.com/gin-gonic/gin"

	apihttp "github.com/yungbote/metrics-engine/internal/http"
	httpH "github.com/yungbote/metrics-engine/internal/http/handlers"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type Handlers struct {
	Health  *httpH.HealthHandler
	Catalog *httpH.CatalogHandler
	Runs    *httpH.RunsHandler
	Events  *httpH.EventsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(),
		Catalog: httpH.NewCatalogHandler(serviceset.Catalog),
		Runs:    httpH.NewRunsHandler(serviceset.RunQuery),
		Events:  httpH.NewEventsHandler(serviceset.ProjectionUpdate),
	}
}

func wireRouter(handlers Handlers) *gin.Engine {
	return apihttp.NewRouter(apihttp.RouterConfig{
		HealthHandler:  handlers.Health,
		CatalogHandler: handlers.Catalog,
		RunsHandler:    handlers.Runs,
		EventsHandler:  handlers.Events,
	})
}
