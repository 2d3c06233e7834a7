package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedSeries(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Series {
	tb.Helper()
	s := &types.Series{
		ID:   uuid.New(),
		Code: code,
		Name: code,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed series: %v", err)
	}
	return s
}

func SeedDataset(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Dataset {
	tb.Helper()
	d := &types.Dataset{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed dataset: %v", err)
	}
	return d
}

func SeedDatasetSeries(tb testing.TB, ctx context.Context, tx *gorm.DB, datasetID, seriesID uuid.UUID) {
	tb.Helper()
	link := &types.DatasetSeries{DatasetID: datasetID, SeriesID: seriesID}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed dataset series: %v", err)
	}
}

func SeedMetric(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, expressionJSON string) *types.Metric {
	tb.Helper()
	m := &types.Metric{
		ID:             uuid.New(),
		Code:           code,
		ExpressionType: catalog.ExpressionSeriesMath,
		ExpressionJSON: datatypes.JSON([]byte(expressionJSON)),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed metric: %v", err)
	}
	return m
}

func SeedMetricRun(tb testing.TB, ctx context.Context, tx *gorm.DB, metric *types.Metric, status domainruns.RunStatus) *types.MetricRun {
	tb.Helper()
	r := &types.MetricRun{
		ID:          uuid.New(),
		MetricID:    metric.ID,
		MetricCode:  metric.Code,
		Status:      status,
		RequestedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed metric run: %v", err)
	}
	return r
}

func SeedDatasetUpdate(tb testing.TB, ctx context.Context, tx *gorm.DB, datasetID uuid.UUID, manifestPath string) *types.DatasetUpdate {
	tb.Helper()
	u := &types.DatasetUpdate{
		ID:                  uuid.New(),
		DatasetID:           datasetID,
		VersionManifestPath: manifestPath,
		ProjectionsPath:     manifestPath + "/projections",
		EventKey:            domainruns.UpdateEventKey(datasetID, manifestPath),
		CreatedAt:           time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed dataset update: %v", err)
	}
	return u
}

func SeedPendingDataset(tb testing.TB, ctx context.Context, tx *gorm.DB, runID, datasetID uuid.UUID, requiredDays int) *types.PendingDataset {
	tb.Helper()
	p := &types.PendingDataset{
		RunID:        runID,
		DatasetID:    datasetID,
		RequiredDays: requiredDays,
		CreatedAt:    time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed pending dataset: %v", err)
	}
	return p
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
