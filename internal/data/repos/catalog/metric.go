package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type MetricRepo interface {
	Create(dbc dbctx.Context, metric *types.Metric) (*types.Metric, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Metric, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Metric, error)
	List(dbc dbctx.Context) ([]*types.Metric, error)
}

type metricRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMetricRepo(db *gorm.DB, baseLog *logger.Logger) MetricRepo {
	return &metricRepo{
		db:  db,
		log: baseLog.With("repo", "MetricRepo"),
	}
}

func (r *metricRepo) Create(dbc dbctx.Context, metric *types.Metric) (*types.Metric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(metric).Error; err != nil {
		return nil, err
	}
	return metric, nil
}

func (r *metricRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Metric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var metric types.Metric
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&metric).Error
	if err != nil {
		return nil, err
	}
	if metric.ID == uuid.Nil {
		return nil, nil
	}
	return &metric, nil
}

func (r *metricRepo) GetByCode(dbc dbctx.Context, code string) (*types.Metric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if code == "" {
		return nil, nil
	}
	var metric types.Metric
	err := transaction.WithContext(dbc.Ctx).
		Where("code = ?", code).
		Limit(1).
		Find(&metric).Error
	if err != nil {
		return nil, err
	}
	if metric.ID == uuid.Nil {
		return nil, nil
	}
	return &metric, nil
}

func (r *metricRepo) List(dbc dbctx.Context) ([]*types.Metric, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Metric
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
