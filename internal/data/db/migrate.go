package db

import (
	types "github.com/yungbote/metrics-engine/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Catalog
		// =========================
		&types.Series{},
		&types.Dataset{},
		&types.DatasetSeries{},
		&types.Metric{},

		// =========================
		// Runs + dependency tracking
		// =========================
		&types.DatasetUpdate{},
		&types.MetricRun{},
		&types.PendingDataset{},
		&types.RunDatasetUpdate{},

		// =========================
		// Idempotency ledger
		// =========================
		&types.EventLog{},
	)
}
