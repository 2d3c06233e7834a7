package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/repos"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// RunQueryService is the read side for the HTTP surface.
type RunQueryService interface {
	GetRun(dbc dbctx.Context, runID uuid.UUID) (*types.MetricRun, []*types.PendingDataset, error)
	ListRecentRuns(dbc dbctx.Context, limit int) ([]*types.MetricRun, error)
}

type runQueryService struct {
	db          *gorm.DB
	log         *logger.Logger
	runRepo     repos.MetricRunRepo
	pendingRepo repos.PendingDatasetRepo
}

func NewRunQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	runRepo repos.MetricRunRepo,
	pendingRepo repos.PendingDatasetRepo,
) RunQueryService {
	return &runQueryService{
		db:          db,
		log:         baseLog.With("service", "RunQueryService"),
		runRepo:     runRepo,
		pendingRepo: pendingRepo,
	}
}

func (s *runQueryService) GetRun(dbc dbctx.Context, runID uuid.UUID) (*types.MetricRun, []*types.PendingDataset, error) {
	run, err := s.runRepo.GetByID(dbc, runID)
	if err != nil {
		return nil, nil, err
	}
	if run == nil {
		return nil, nil, nil
	}
	pendings, err := s.pendingRepo.ListByRunID(dbc, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, pendings, nil
}

func (s *runQueryService) ListRecentRuns(dbc dbctx.Context, limit int) ([]*types.MetricRun, error) {
	return s.runRepo.ListRecent(dbc, limit)
}
