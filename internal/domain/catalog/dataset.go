package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is a versioned collection of series, updated atomically as a unit.
type Dataset struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Dataset) TableName() string { return "datasets" }

// DatasetSeries is the dataset/series membership relation. A series may
// belong to more than one dataset.
type DatasetSeries struct {
	DatasetID uuid.UUID `gorm:"type:uuid;primaryKey" json:"dataset_id"`
	SeriesID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"series_id"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (DatasetSeries) TableName() string { return "dataset_series" }
