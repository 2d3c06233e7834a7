package catalog

import (
	"gorm.io/gorm"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type SeriesRepo interface {
	Create(dbc dbctx.Context, series *types.Series) (*types.Series, error)
	GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Series, error)
	List(dbc dbctx.Context) ([]*types.Series, error)
}

type seriesRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSeriesRepo(db *gorm.DB, baseLog *logger.Logger) SeriesRepo {
	return &seriesRepo{
		db:  db,
		log: baseLog.With("repo", "SeriesRepo"),
	}
}

func (r *seriesRepo) Create(dbc dbctx.Context, series *types.Series) (*types.Series, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(series).Error; err != nil {
		return nil, err
	}
	return series, nil
}

func (r *seriesRepo) GetByCodes(dbc dbctx.Context, codes []string) ([]*types.Series, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(codes) == 0 {
		return []*types.Series{}, nil
	}
	var out []*types.Series
	if err := transaction.WithContext(dbc.Ctx).
		Where("code IN ?", codes).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *seriesRepo) List(dbc dbctx.Context) ([]*types.Series, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Series
	if err := transaction.WithContext(dbc.Ctx).
		Order("code ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
