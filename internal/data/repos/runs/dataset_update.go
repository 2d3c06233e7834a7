package runs

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type DatasetUpdateRepo interface {
	Create(dbc dbctx.Context, update *types.DatasetUpdate) (*types.DatasetUpdate, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DatasetUpdate, error)
	GetByEventKey(dbc dbctx.Context, eventKey string) (*types.DatasetUpdate, error)
	GetLatestByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (*types.DatasetUpdate, error)
}

type datasetUpdateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetUpdateRepo(db *gorm.DB, baseLog *logger.Logger) DatasetUpdateRepo {
	return &datasetUpdateRepo{
		db:  db,
		log: baseLog.With("repo", "DatasetUpdateRepo"),
	}
}

func (r *datasetUpdateRepo) Create(dbc dbctx.Context, update *types.DatasetUpdate) (*types.DatasetUpdate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(update).Error; err != nil {
		return nil, err
	}
	return update, nil
}

func (r *datasetUpdateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DatasetUpdate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var update types.DatasetUpdate
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&update).Error
	if err != nil {
		return nil, err
	}
	if update.ID == uuid.Nil {
		return nil, nil
	}
	return &update, nil
}

func (r *datasetUpdateRepo) GetByEventKey(dbc dbctx.Context, eventKey string) (*types.DatasetUpdate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if eventKey == "" {
		return nil, nil
	}
	var update types.DatasetUpdate
	err := transaction.WithContext(dbc.Ctx).
		Where("event_key = ?", eventKey).
		Limit(1).
		Find(&update).Error
	if err != nil {
		return nil, err
	}
	if update.ID == uuid.Nil {
		return nil, nil
	}
	return &update, nil
}

func (r *datasetUpdateRepo) GetLatestByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) (*types.DatasetUpdate, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var update types.DatasetUpdate
	err := transaction.WithContext(dbc.Ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at DESC").
		Limit(1).
		Find(&update).Error
	if err != nil {
		return nil, err
	}
	if update.ID == uuid.Nil {
		return nil, nil
	}
	return &update, nil
}
