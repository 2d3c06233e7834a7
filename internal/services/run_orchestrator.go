package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type RunOrchestratorService interface {
	// CreateRunForMetric inserts a run in pending_dependencies with one
	// wait-list row per required dataset. The triggering dataset satisfies
	// its own row immediately from currentUpdate, skipping the freshness
	// check applied to later arrivals. If nothing is left unreceived the
	// run is emitted before returning.
	CreateRunForMetric(dbc dbctx.Context, metric *types.Metric, currentDatasetID uuid.UUID, currentUpdate *types.DatasetUpdate, requiredDatasets []*types.Dataset) (*types.MetricRun, error)
	// EmitPendingRun publishes the run-request payload for a fully
	// satisfied run and advances it to queued. Emitting a run that is not
	// in pending_dependencies is rejected.
	EmitPendingRun(dbc dbctx.Context, runID uuid.UUID) (*types.MetricRun, error)
}

type runOrchestratorService struct {
	db           *gorm.DB
	log          *logger.Logger
	runRepo      repos.MetricRunRepo
	pendingRepo  repos.PendingDatasetRepo
	updateRepo   repos.DatasetUpdateRepo
	metricRepo   repos.MetricRepo
	datasetRepo  repos.DatasetRepo
	publisher    RunRequestPublisher
	requiredDays int
	outputBucket string
	now          func() time.Time
}

func NewRunOrchestratorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.MetricRunRepo,
	pendingRepo repos.PendingDatasetRepo,
	updateRepo repos.DatasetUpdateRepo,
	metricRepo repos.MetricRepo,
	datasetRepo repos.DatasetRepo,
	publisher RunRequestPublisher,
	requiredDays int,
	outputBucket string,
) RunOrchestratorService {
	return &runOrchestratorService{
		db:           db,
		log:          baseLog.With("service", "RunOrchestratorService"),
		runRepo:      runRepo,
		pendingRepo:  pendingRepo,
		updateRepo:   updateRepo,
		metricRepo:   metricRepo,
		datasetRepo:  datasetRepo,
		publisher:    publisher,
		requiredDays: requiredDays,
		outputBucket: outputBucket,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *runOrchestratorService) CreateRunForMetric(
	dbc dbctx.Context,
	metric *types.Metric,
	currentDatasetID uuid.UUID,
	currentUpdate *types.DatasetUpdate,
	requiredDatasets []*types.Dataset,
) (*types.MetricRun, error) {
	run := &types.MetricRun{
		ID:          uuid.New(),
		MetricID:    metric.ID,
		MetricCode:  metric.Code,
		Status:      domainruns.StatusPendingDependencies,
		RequestedAt: s.now(),
	}
	if _, err := s.runRepo.Create(dbc, run); err != nil {
		return nil, err
	}

	for _, dataset := range requiredDatasets {
		pending := &types.PendingDataset{
			RunID:        run.ID,
			DatasetID:    dataset.ID,
			RequiredDays: s.requiredDays,
			CreatedAt:    s.now(),
		}
		if dataset.ID == currentDatasetID && currentUpdate != nil {
			pending.Received = true
			pending.ReceivedUpdateID = &currentUpdate.ID
			receivedAt := currentUpdate.CreatedAt
			pending.ReceivedAt = &receivedAt
		}
		if _, err := s.pendingRepo.Create(dbc, pending); err != nil {
			return nil, err
		}
	}

	s.log.Info("created metric run",
		"run_id", run.ID,
		"metric_code", metric.Code,
		"required_datasets", len(requiredDatasets))

	unreceived, err := s.pendingRepo.CountUnreceivedByRunID(dbc, run.ID)
	if err != nil {
		return nil, err
	}
	if unreceived == 0 {
		return s.EmitPendingRun(dbc, run.ID)
	}
	return run, nil
}

func (s *runOrchestratorService) EmitPendingRun(dbc dbctx.Context, runID uuid.UUID) (*types.MetricRun, error) {
	run, err := s.runRepo.GetByID(dbc, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %s not found at emission", runID)
	}
	if run.Status != domainruns.StatusPendingDependencies {
		return nil, fmt.Errorf("run %s is %s, refusing to emit twice", runID, run.Status)
	}

	metric, err := s.metricRepo.GetByID(dbc, run.MetricID)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		return nil, fmt.Errorf("metric %s missing for run %s", run.MetricID, runID)
	}

	pendings, err := s.pendingRepo.ListByRunID(dbc, runID)
	if err != nil {
		return nil, err
	}

	// Latest update per required dataset drives both the version links and
	// the catalog the worker reads from.
	latest := make(map[uuid.UUID]*types.DatasetUpdate, len(pendings))
	updateIDs := make([]uuid.UUID, 0, len(pendings))
	for _, pending := range pendings {
		update, err := s.updateRepo.GetLatestByDatasetID(dbc, pending.DatasetID)
		if err != nil {
			return nil, err
		}
		if update == nil {
			return nil, fmt.Errorf("dataset %s has no update at emission of run %s", pending.DatasetID, runID)
		}
		latest[pending.DatasetID] = update
		updateIDs = append(updateIDs, update.ID)
	}
	if err := s.runRepo.LinkDatasetUpdates(dbc, runID, updateIDs); err != nil {
		return nil, err
	}

	codes, err := catalog.ExtractSeriesCodes(metric)
	if err != nil {
		return nil, err
	}

	seriesByDataset := make(map[uuid.UUID]map[string]bool, len(pendings))
	for _, pending := range pendings {
		datasetCodes, err := s.datasetRepo.ListSeriesCodes(dbc, pending.DatasetID)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool, len(datasetCodes))
		for _, code := range datasetCodes {
			set[code] = true
		}
		seriesByDataset[pending.DatasetID] = set
	}

	// First required dataset carrying a code wins.
	inputs := make([]domainruns.RunInput, 0, len(codes))
	for _, code := range codes {
		for _, pending := range pendings {
			if seriesByDataset[pending.DatasetID][code] {
				inputs = append(inputs, domainruns.RunInput{DatasetID: pending.DatasetID, SeriesCode: code})
				break
			}
		}
	}

	catalogEntries := make(map[string]domainruns.CatalogEntry, len(pendings))
	for _, pending := range pendings {
		update := latest[pending.DatasetID]
		catalogEntries[pending.DatasetID.String()] = domainruns.CatalogEntry{
			ManifestPath:    update.VersionManifestPath,
			ProjectionsPath: update.ProjectionsPath,
		}
	}

	expr, err := metric.Expression()
	if err != nil {
		return nil, err
	}
	if err := catalog.ValidateWindows(expr); err != nil {
		return nil, err
	}

	event := &domainruns.RunRequestEvent{
		Type:                   domainruns.EventRunRequested,
		RunID:                  run.ID,
		MetricCode:             metric.Code,
		ExpressionType:         string(metric.ExpressionType),
		ExpressionJSON:         []byte(metric.ExpressionJSON),
		Inputs:                 inputs,
		Catalog:                domainruns.RunCatalog{Datasets: catalogEntries},
		Output:                 domainruns.RunOutput{BasePath: s.outputBasePath(metric.Code)},
		MessageGroupID:         metric.Code,
		MessageDeduplicationID: run.ID.String(),
	}
	if err := s.publisher.PublishRunRequest(dbc.Ctx, event); err != nil {
		return nil, err
	}

	if err := s.runRepo.UpdateStatus(dbc, runID, domainruns.StatusQueued); err != nil {
		return nil, err
	}
	run.Status = domainruns.StatusQueued

	s.log.Info("emitted run request",
		"run_id", run.ID,
		"metric_code", metric.Code,
		"inputs", len(inputs))
	return run, nil
}

func (s *runOrchestratorService) outputBasePath(metricCode string) string {
	return fmt.Sprintf("s3://%s/metrics/%s/", s.outputBucket, metricCode)
}
