package runs

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type EventLogRepo interface {
	// Insert claims an event key. When the key already exists it returns the
	// existing row and inserted=false instead of failing.
	Insert(dbc dbctx.Context, entry *types.EventLog) (*types.EventLog, bool, error)
	GetByEventKey(dbc dbctx.Context, eventKey string) (*types.EventLog, error)
	MarkProcessed(dbc dbctx.Context, eventKey string, runID *uuid.UUID) error
}

type eventLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventLogRepo(db *gorm.DB, baseLog *logger.Logger) EventLogRepo {
	return &eventLogRepo{
		db:  db,
		log: baseLog.With("repo", "EventLogRepo"),
	}
}

func (r *eventLogRepo) Insert(dbc dbctx.Context, entry *types.EventLog) (*types.EventLog, bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	result := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected > 0 {
		return entry, true, nil
	}
	existing, err := r.GetByEventKey(dbc, entry.EventKey)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *eventLogRepo) GetByEventKey(dbc dbctx.Context, eventKey string) (*types.EventLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if eventKey == "" {
		return nil, nil
	}
	var entry types.EventLog
	err := transaction.WithContext(dbc.Ctx).
		Where("event_key = ?", eventKey).
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.EventKey == "" {
		return nil, nil
	}
	return &entry, nil
}

func (r *eventLogRepo) MarkProcessed(dbc dbctx.Context, eventKey string, runID *uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{"processed_at": now}
	if runID != nil {
		updates["run_id"] = *runID
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.EventLog{}).
		Where("event_key = ?", eventKey).
		Updates(updates).Error
}
