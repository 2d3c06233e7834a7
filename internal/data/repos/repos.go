// Package repos re-exports the per-area repositories so callers wire against
// a single import.
package repos

import (
	catalogrepos "github.com/yungbote/metrics-engine/internal/data/repos/catalog"
	runrepos "github.com/yungbote/metrics-engine/internal/data/repos/runs"
)

type (
	MetricRepo         = catalogrepos.MetricRepo
	SeriesRepo         = catalogrepos.SeriesRepo
	DatasetRepo        = catalogrepos.DatasetRepo
	MetricRunRepo      = runrepos.MetricRunRepo
	PendingDatasetRepo = runrepos.PendingDatasetRepo
	DatasetUpdateRepo  = runrepos.DatasetUpdateRepo
	EventLogRepo       = runrepos.EventLogRepo
)

var (
	NewMetricRepo         = catalogrepos.NewMetricRepo
	NewSeriesRepo         = catalogrepos.NewSeriesRepo
	NewDatasetRepo        = catalogrepos.NewDatasetRepo
	NewMetricRunRepo      = runrepos.NewMetricRunRepo
	NewPendingDatasetRepo = runrepos.NewPendingDatasetRepo
	NewDatasetUpdateRepo  = runrepos.NewDatasetUpdateRepo
	NewEventLogRepo       = runrepos.NewEventLogRepo
)
