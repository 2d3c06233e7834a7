package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/repos"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type Repos struct {
	Metric         repos.MetricRepo
	Series         repos.SeriesRepo
	Dataset        repos.DatasetRepo
	MetricRun      repos.MetricRunRepo
	PendingDataset repos.PendingDatasetRepo
	DatasetUpdate  repos.DatasetUpdateRepo
	EventLog       repos.EventLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Metric:         repos.NewMetricRepo(db, log),
		Series:         repos.NewSeriesRepo(db, log),
		Dataset:        repos.NewDatasetRepo(db, log),
		MetricRun:      repos.NewMetricRunRepo(db, log),
		PendingDataset: repos.NewPendingDatasetRepo(db, log),
		DatasetUpdate:  repos.NewDatasetUpdateRepo(db, log),
		EventLog:       repos.NewEventLogRepo(db, log),
	}
}
