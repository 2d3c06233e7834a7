package domain

import (
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	"github.com/yungbote/metrics-engine/internal/domain/runs"
)

type (
	Metric        = catalog.Metric
	Series        = catalog.Series
	Dataset       = catalog.Dataset
	DatasetSeries = catalog.DatasetSeries

	MetricRun        = runs.MetricRun
	PendingDataset   = runs.PendingDataset
	RunDatasetUpdate = runs.RunDatasetUpdate
	DatasetUpdate    = runs.DatasetUpdate
	EventLog         = runs.EventLog
)
