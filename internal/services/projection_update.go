package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/db"
	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// ProjectionUpdateResult reports what one inbound dataset update produced.
// Runs holds every run created or readied by the event; a run both created
// and readied in the same event appears twice.
type ProjectionUpdateResult struct {
	Replayed bool                 `json:"replayed"`
	Update   *types.DatasetUpdate `json:"update,omitempty"`
	Runs     []*types.MetricRun   `json:"runs"`
}

type ProjectionUpdateService interface {
	Handle(ctx context.Context, event *domainruns.ProjectionUpdateEvent) (*ProjectionUpdateResult, error)
}

type projectionUpdateService struct {
	db              *gorm.DB
	log             *logger.Logger
	txRunner        db.TxRunner
	eventLogRepo    repos.EventLogRepo
	updateRepo      repos.DatasetUpdateRepo
	resolver        DependencyResolverService
	orchestrator    RunOrchestratorService
	pendingRuns     PendingRunService
	manifests       ManifestStore
	verifyManifests bool
}

func NewProjectionUpdateService(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	eventLogRepo repos.EventLogRepo,
	updateRepo repos.DatasetUpdateRepo,
	resolver DependencyResolverService,
	orchestrator RunOrchestratorService,
	pendingRuns PendingRunService,
	manifests ManifestStore,
	verifyManifests bool,
) ProjectionUpdateService {
	return &projectionUpdateService{
		db:              gdb,
		log:             baseLog.With("service", "ProjectionUpdateService"),
		txRunner:        txRunner,
		eventLogRepo:    eventLogRepo,
		updateRepo:      updateRepo,
		resolver:        resolver,
		orchestrator:    orchestrator,
		pendingRuns:     pendingRuns,
		manifests:       manifests,
		verifyManifests: verifyManifests,
	}
}

func (s *projectionUpdateService) Handle(ctx context.Context, event *domainruns.ProjectionUpdateEvent) (*ProjectionUpdateResult, error) {
	if event.DatasetID == uuid.Nil {
		return nil, fmt.Errorf("projection update missing dataset_id")
	}
	if event.VersionManifestPath == "" {
		return nil, fmt.Errorf("projection update missing version_manifest_path")
	}

	if s.verifyManifests && s.manifests != nil && event.Bucket != "" {
		exists, err := s.manifests.ObjectExists(ctx, event.Bucket, event.VersionManifestPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("manifest %s not found in bucket %s", event.VersionManifestPath, event.Bucket)
		}
	}

	var result *ProjectionUpdateResult
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		var txErr error
		result, txErr = s.handleInTx(dbc, event)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *projectionUpdateService) handleInTx(dbc dbctx.Context, event *domainruns.ProjectionUpdateEvent) (*ProjectionUpdateResult, error) {
	eventKey := domainruns.UpdateEventKey(event.DatasetID, event.VersionManifestPath)

	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	entry, inserted, err := s.eventLogRepo.Insert(dbc, &types.EventLog{
		EventKey:     eventKey,
		EventType:    domainruns.EventProjectionUpdate,
		EventPayload: datatypes.JSON(payload),
	})
	if err != nil {
		return nil, err
	}
	if !inserted && entry != nil && entry.ProcessedAt != nil {
		s.log.Info("duplicate projection update, already processed", "event_key", eventKey)
		return &ProjectionUpdateResult{Replayed: true, Runs: []*types.MetricRun{}}, nil
	}

	// Second idempotency layer: the update row itself is unique per
	// dataset+manifest pair, so a partially processed redelivery reuses
	// the row written the first time around.
	update, err := s.updateRepo.GetByEventKey(dbc, eventKey)
	if err != nil {
		return nil, err
	}
	if update == nil {
		update, err = s.updateRepo.Create(dbc, &types.DatasetUpdate{
			ID:                  uuid.New(),
			DatasetID:           event.DatasetID,
			VersionManifestPath: event.VersionManifestPath,
			ProjectionsPath:     event.ProjectionsPath,
			Bucket:              event.Bucket,
			EventKey:            eventKey,
		})
		if err != nil {
			return nil, err
		}
	}

	metrics, err := s.resolver.FindMetricsForDataset(dbc, event.DatasetID)
	if err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		if err := s.eventLogRepo.MarkProcessed(dbc, eventKey, nil); err != nil {
			return nil, err
		}
		s.log.Info("no dependent metrics for dataset", "dataset_id", event.DatasetID)
		return &ProjectionUpdateResult{Update: update, Runs: []*types.MetricRun{}}, nil
	}

	var runs []*types.MetricRun
	for _, metric := range metrics {
		required, err := s.resolver.ResolveRequiredDatasets(dbc, metric.ID)
		if err != nil {
			var notFound *catalog.SeriesNotFoundError
			if errors.As(err, &notFound) {
				s.log.Warn("skipping run creation for metric with unresolvable series",
					"metric_code", metric.Code, "error", err.Error())
				continue
			}
			return nil, err
		}
		run, err := s.orchestrator.CreateRunForMetric(dbc, metric, event.DatasetID, update, required)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	ready, err := s.pendingRuns.UpdatePendingRunsForDataset(dbc, event.DatasetID, update)
	if err != nil {
		return nil, err
	}
	for _, run := range ready {
		if run.Status != domainruns.StatusPendingDependencies {
			continue
		}
		emitted, err := s.orchestrator.EmitPendingRun(dbc, run.ID)
		if err != nil {
			return nil, err
		}
		runs = append(runs, emitted)
	}

	// The ledger records the first run this event produced so an operator
	// can walk from a redelivered event to the work it triggered.
	var processedRunID *uuid.UUID
	if len(runs) > 0 {
		processedRunID = &runs[0].ID
	}
	if err := s.eventLogRepo.MarkProcessed(dbc, eventKey, processedRunID); err != nil {
		return nil, err
	}

	s.log.Info("processed projection update",
		"dataset_id", event.DatasetID,
		"event_key", eventKey,
		"runs", len(runs))
	return &ProjectionUpdateResult{Update: update, Runs: runs}, nil
}
