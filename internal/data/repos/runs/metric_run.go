package runs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/metrics-engine/internal/domain"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type MetricRunRepo interface {
	Create(dbc dbctx.Context, run *types.MetricRun) (*types.MetricRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MetricRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateStatus(dbc dbctx.Context, id uuid.UUID, status domainruns.RunStatus) error
	LinkDatasetUpdates(dbc dbctx.Context, runID uuid.UUID, updateIDs []uuid.UUID) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.MetricRun, error)
}

type metricRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricRunRepo(db *gorm.DB, baseLog *logger.Logger) MetricRunRepo {
	return &metricRunRepo{
		db:  db,
		log: baseLog.With("repo", "MetricRunRepo"),
	}
}

func (r *metricRunRepo) Create(dbc dbctx.Context, run *types.MetricRun) (*types.MetricRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *metricRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MetricRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.MetricRun
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error
	if err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *metricRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.MetricRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *metricRunRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status domainruns.RunStatus) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{"status": status})
}

// LinkDatasetUpdates records which dataset updates fed a run. Re-linking the
// same pair is a no-op so replayed events stay idempotent.
func (r *metricRunRepo) LinkDatasetUpdates(dbc dbctx.Context, runID uuid.UUID, updateIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updateIDs) == 0 {
		return nil
	}
	links := make([]types.RunDatasetUpdate, 0, len(updateIDs))
	for _, updateID := range updateIDs {
		links = append(links, types.RunDatasetUpdate{RunID: runID, DatasetUpdateID: updateID})
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

func (r *metricRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.MetricRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.MetricRun
	if err := transaction.WithContext(dbc.Ctx).
		Order("requested_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
