package runs

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DatasetUpdate is one versioned ingestion of a dataset, append-only. The
// unique event key is the first of the two idempotency layers guarding
// duplicate deliveries.
type DatasetUpdate struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DatasetID           uuid.UUID `gorm:"type:uuid;column:dataset_id;not null;index" json:"dataset_id"`
	VersionManifestPath string    `gorm:"column:version_manifest_path;not null" json:"version_manifest_path"`
	ProjectionsPath     string    `gorm:"column:projections_path;not null" json:"projections_path"`
	Bucket              string    `gorm:"column:bucket" json:"bucket,omitempty"`
	EventKey            string    `gorm:"column:event_key;not null;uniqueIndex" json:"event_key"`
	CreatedAt           time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (DatasetUpdate) TableName() string { return "dataset_updates" }

// UpdateEventKey builds the canonical idempotency key for a dataset update.
func UpdateEventKey(datasetID uuid.UUID, versionManifestPath string) string {
	return fmt.Sprintf("%s:%s", datasetID, versionManifestPath)
}

// IsUpdateValid reports whether an update is fresh enough to satisfy a
// pending dependency. requiredDays <= 0 means no freshness constraint.
// The cutoff uses calendar-day subtraction so month and year boundaries
// behave like local-date arithmetic, and the boundary itself is inclusive.
func IsUpdateValid(update *DatasetUpdate, requiredDays int, referenceDate time.Time) bool {
	if requiredDays <= 0 {
		return true
	}
	return !update.CreatedAt.Before(CutoffDate(requiredDays, referenceDate))
}

// CutoffDate returns the oldest createdAt an update may have and still
// satisfy a dependency with the given freshness window.
func CutoffDate(requiredDays int, referenceDate time.Time) time.Time {
	return referenceDate.AddDate(0, 0, -requiredDays)
}
