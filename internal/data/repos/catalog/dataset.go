package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type DatasetRepo interface {
	Create(dbc dbctx.Context, dataset *types.Dataset) (*types.Dataset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error)
	List(dbc dbctx.Context) ([]*types.Dataset, error)
	AddSeries(dbc dbctx.Context, datasetID, seriesID uuid.UUID) error
	GetBySeriesCodes(dbc dbctx.Context, codes []string) ([]*types.Dataset, error)
	ListSeriesCodes(dbc dbctx.Context, datasetID uuid.UUID) ([]string, error)
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{
		db:  db,
		log: baseLog.With("repo", "DatasetRepo"),
	}
}

func (r *datasetRepo) Create(dbc dbctx.Context, dataset *types.Dataset) (*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(dataset).Error; err != nil {
		return nil, err
	}
	return dataset, nil
}

func (r *datasetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var dataset types.Dataset
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&dataset).Error
	if err != nil {
		return nil, err
	}
	if dataset.ID == uuid.Nil {
		return nil, nil
	}
	return &dataset, nil
}

func (r *datasetRepo) List(dbc dbctx.Context) ([]*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dataset
	if err := transaction.WithContext(dbc.Ctx).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) AddSeries(dbc dbctx.Context, datasetID, seriesID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	link := types.DatasetSeries{DatasetID: datasetID, SeriesID: seriesID}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&link).Error
}

// GetBySeriesCodes returns the distinct datasets that carry at least one of
// the given series codes via dataset_series membership.
func (r *datasetRepo) GetBySeriesCodes(dbc dbctx.Context, codes []string) ([]*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(codes) == 0 {
		return []*types.Dataset{}, nil
	}
	var out []*types.Dataset
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Dataset{}).
		Distinct("datasets.*").
		Joins("JOIN dataset_series ON dataset_series.dataset_id = datasets.id").
		Joins("JOIN series ON series.id = dataset_series.series_id").
		Where("series.code IN ?", codes).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) ListSeriesCodes(dbc dbctx.Context, datasetID uuid.UUID) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var codes []string
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Series{}).
		Joins("JOIN dataset_series ON dataset_series.series_id = series.id").
		Where("dataset_series.dataset_id = ?", datasetID).
		Pluck("series.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
