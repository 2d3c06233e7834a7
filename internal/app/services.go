package app

import (
	"gorm.io/gorm"

	awsclients "github.com/yungbote/metrics-engine/internal/clients/aws"
	"github.com/yungbote/metrics-engine/internal/data/db"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
	"github.com/yungbote/metrics-engine/internal/services"
)

type Services struct {
	Catalog          services.CatalogService
	Resolver         services.DependencyResolverService
	Orchestrator     services.RunOrchestratorService
	PendingRuns      services.PendingRunService
	ProjectionUpdate services.ProjectionUpdateService
	RunLifecycle     services.RunLifecycleService
	RunQuery         services.RunQueryService
}

func wireServices(gdb *gorm.DB, log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	txRunner := db.NewGormTxRunner(gdb)

	publisher, err := awsclients.NewSNSPublisher(cfg.RunRequestTopicARN, cfg.PublishEnabled, log)
	if err != nil {
		return Services{}, err
	}

	var manifests services.ManifestStore
	if cfg.VerifyManifests {
		s3store, err := awsclients.NewS3Store(log)
		if err != nil {
			return Services{}, err
		}
		manifests = s3store
	}

	resolver := services.NewDependencyResolverService(gdb, log, reposet.Metric, reposet.Series, reposet.Dataset)
	orchestrator := services.NewRunOrchestratorService(
		gdb, log,
		reposet.MetricRun,
		reposet.PendingDataset,
		reposet.DatasetUpdate,
		reposet.Metric,
		reposet.Dataset,
		publisher,
		cfg.RequiredDays,
		cfg.OutputBucket,
	)
	pendingRuns := services.NewPendingRunService(gdb, log, reposet.MetricRun, reposet.PendingDataset)
	projectionUpdate := services.NewProjectionUpdateService(
		gdb, log,
		txRunner,
		reposet.EventLog,
		reposet.DatasetUpdate,
		resolver,
		orchestrator,
		pendingRuns,
		manifests,
		cfg.VerifyManifests,
	)
	runLifecycle := services.NewRunLifecycleService(gdb, log, txRunner, reposet.MetricRun)

	return Services{
		Catalog:          services.NewCatalogService(gdb, log, txRunner, reposet.Metric, reposet.Series, reposet.Dataset),
		Resolver:         resolver,
		Orchestrator:     orchestrator,
		PendingRuns:      pendingRuns,
		ProjectionUpdate: projectionUpdate,
		RunLifecycle:     runLifecycle,
		RunQuery:         services.NewRunQueryService(gdb, log, reposet.MetricRun, reposet.PendingDataset),
	}, nil
}
