package runs

import (
	"time"

	"github.com/google/uuid"
)

// MetricRun is one attempt to compute a metric against a specific set of
// dataset versions. Created pending_dependencies by the orchestrator, queued
// on emission, then advanced by worker callbacks.
type MetricRun struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MetricID        uuid.UUID  `gorm:"type:uuid;column:metric_id;not null;index" json:"metric_id"`
	MetricCode      string     `gorm:"column:metric_code;not null;index" json:"metric_code"`
	Status          RunStatus  `gorm:"column:status;not null;index" json:"status"`
	RequestedAt     time.Time  `gorm:"column:requested_at;not null;default:now()" json:"requested_at"`
	StartedAt       *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt      *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	LastHeartbeatAt *time.Time `gorm:"column:last_heartbeat_at" json:"last_heartbeat_at,omitempty"`
	Error           string     `gorm:"column:error" json:"error,omitempty"`
	VersionTs       string     `gorm:"column:version_ts" json:"version_ts,omitempty"`
	ManifestPath    string     `gorm:"column:manifest_path" json:"manifest_path,omitempty"`
	RowCount        *int64     `gorm:"column:row_count" json:"row_count,omitempty"`
}

func (MetricRun) TableName() string { return "metric_runs" }

// PendingDataset is a run's outstanding wait on one required dataset.
// Created once per run per required dataset, mutated in place when a
// satisfying update arrives, never deleted in the normal flow.
type PendingDataset struct {
	RunID            uuid.UUID  `gorm:"type:uuid;column:run_id;primaryKey" json:"run_id"`
	DatasetID        uuid.UUID  `gorm:"type:uuid;column:dataset_id;primaryKey;index" json:"dataset_id"`
	RequiredDays     int        `gorm:"column:required_days;not null" json:"required_days"`
	Received         bool       `gorm:"column:received;not null;default:false" json:"received"`
	ReceivedUpdateID *uuid.UUID `gorm:"type:uuid;column:received_update_id" json:"received_update_id,omitempty"`
	ReceivedAt       *time.Time `gorm:"column:received_at" json:"received_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (PendingDataset) TableName() string { return "metric_run_pending_datasets" }

// RunDatasetUpdate links an emitted run to the dataset update versions it
// was emitted against.
type RunDatasetUpdate struct {
	RunID           uuid.UUID `gorm:"type:uuid;column:run_id;primaryKey" json:"run_id"`
	DatasetUpdateID uuid.UUID `gorm:"type:uuid;column:dataset_update_id;primaryKey" json:"dataset_update_id"`
}

func (RunDatasetUpdate) TableName() string { return "run_dataset_updates" }
