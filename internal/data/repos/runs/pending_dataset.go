package runs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type PendingDatasetRepo interface {
	Create(dbc dbctx.Context, pending *types.PendingDataset) (*types.PendingDataset, error)
	ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.PendingDataset, error)
	ListUnreceivedByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.PendingDataset, error)
	CountUnreceivedByRunID(dbc dbctx.Context, runID uuid.UUID) (int64, error)
	MarkReceived(dbc dbctx.Context, runID, datasetID, updateID uuid.UUID) error
}

type pendingDatasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPendingDatasetRepo(db *gorm.DB, baseLog *logger.Logger) PendingDatasetRepo {
	return &pendingDatasetRepo{
		db:  db,
		log: baseLog.With("repo", "PendingDatasetRepo"),
	}
}

func (r *pendingDatasetRepo) Create(dbc dbctx.Context, pending *types.PendingDataset) (*types.PendingDataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(pending).Error; err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *pendingDatasetRepo) ListByRunID(dbc dbctx.Context, runID uuid.UUID) ([]*types.PendingDataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PendingDataset
	if err := transaction.WithContext(dbc.Ctx).
		Where("run_id = ?", runID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pendingDatasetRepo) ListUnreceivedByDatasetID(dbc dbctx.Context, datasetID uuid.UUID) ([]*types.PendingDataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.PendingDataset
	if err := transaction.WithContext(dbc.Ctx).
		Where("dataset_id = ? AND received = ?", datasetID, false).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pendingDatasetRepo) CountUnreceivedByRunID(dbc dbctx.Context, runID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.PendingDataset{}).
		Where("run_id = ? AND received = ?", runID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *pendingDatasetRepo) MarkReceived(dbc dbctx.Context, runID, datasetID, updateID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PendingDataset{}).
		Where("run_id = ? AND dataset_id = ?", runID, datasetID).
		Updates(map[string]interface{}{
			"received":           true,
			"received_update_id": updateID,
			"received_at":        now,
		}).Error
}
