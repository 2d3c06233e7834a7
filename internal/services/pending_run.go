package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type PendingRunService interface {
	// UpdatePendingRunsForDataset marks every waiting run satisfied by this
	// update as received, freshness permitting, and returns the runs that
	// became fully ready. Returned runs are still pending_dependencies;
	// emission is the caller's job.
	UpdatePendingRunsForDataset(dbc dbctx.Context, datasetID uuid.UUID, update *types.DatasetUpdate) ([]*types.MetricRun, error)
	IsRunReady(dbc dbctx.Context, runID uuid.UUID) (bool, error)
}

type pendingRunService struct {
	db          *gorm.DB
	log         *logger.Logger
	runRepo     repos.MetricRunRepo
	pendingRepo repos.PendingDatasetRepo
	now         func() time.Time
}

func NewPendingRunService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.MetricRunRepo,
	pendingRepo repos.PendingDatasetRepo,
) PendingRunService {
	return &pendingRunService{
		db:          db,
		log:         baseLog.With("service", "PendingRunService"),
		runRepo:     runRepo,
		pendingRepo: pendingRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *pendingRunService) UpdatePendingRunsForDataset(dbc dbctx.Context, datasetID uuid.UUID, update *types.DatasetUpdate) ([]*types.MetricRun, error) {
	pendings, err := s.pendingRepo.ListUnreceivedByDatasetID(dbc, datasetID)
	if err != nil {
		return nil, err
	}

	referenceDate := s.now()
	var ready []*types.MetricRun
	for _, pending := range pendings {
		if !domainruns.IsUpdateValid(update, pending.RequiredDays, referenceDate) {
			s.log.Info("update too old for pending run",
				"run_id", pending.RunID,
				"dataset_id", datasetID,
				"required_days", pending.RequiredDays,
				"update_created_at", update.CreatedAt)
			continue
		}
		if err := s.pendingRepo.MarkReceived(dbc, pending.RunID, datasetID, update.ID); err != nil {
			return nil, err
		}
		isReady, err := s.IsRunReady(dbc, pending.RunID)
		if err != nil {
			return nil, err
		}
		if !isReady {
			continue
		}
		run, err := s.runRepo.GetByID(dbc, pending.RunID)
		if err != nil {
			return nil, err
		}
		if run == nil {
			continue
		}
		ready = append(ready, run)
	}
	return ready, nil
}

func (s *pendingRunService) IsRunReady(dbc dbctx.Context, runID uuid.UUID) (bool, error) {
	unreceived, err := s.pendingRepo.CountUnreceivedByRunID(dbc, runID)
	if err != nil {
		return false, err
	}
	return unreceived == 0, nil
}
