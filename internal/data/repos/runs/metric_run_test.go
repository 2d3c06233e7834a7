package runs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/metrics-engine/internal/data/repos/testutil"
	types "github.com/yungbote/metrics-engine/internal/domain"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
)

func TestMetricRunRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMetricRunRepo(db, testutil.Logger(t))

	metric := testutil.SeedMetric(t, ctx, tx, "load_index",
		`{"op":"add","left":{"seriesCode":"cpu"},"right":{"seriesCode":"mem"}}`)

	now := time.Now().UTC()
	older := &types.MetricRun{
		ID:          uuid.New(),
		MetricID:    metric.ID,
		MetricCode:  metric.Code,
		Status:      domainruns.StatusPendingDependencies,
		RequestedAt: now.Add(-2 * time.Hour),
	}
	newer := &types.MetricRun{
		ID:          uuid.New(),
		MetricID:    metric.ID,
		MetricCode:  metric.Code,
		Status:      domainruns.StatusPendingDependencies,
		RequestedAt: now.Add(-1 * time.Hour),
	}
	if _, err := repo.Create(dbc, older); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(dbc, newer); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(dbc, older.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != older.ID {
		t.Fatalf("GetByID: expected %v got %v", older.ID, got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByID (missing): expected nil, got %v", missing)
	}

	// UpdateFields
	startedAt := now.Add(-30 * time.Minute)
	if err := repo.UpdateFields(dbc, older.ID, map[string]interface{}{
		"status":     domainruns.StatusRunning,
		"started_at": startedAt,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err = repo.GetByID(dbc, older.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.Status != domainruns.StatusRunning {
		t.Fatalf("UpdateFields: status %s", got.Status)
	}
	if got.StartedAt == nil {
		t.Fatalf("UpdateFields: started_at not set")
	}

	// UpdateStatus
	if err := repo.UpdateStatus(dbc, newer.ID, domainruns.StatusQueued); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err = repo.GetByID(dbc, newer.ID)
	if err != nil || got.Status != domainruns.StatusQueued {
		t.Fatalf("UpdateStatus: err=%v status=%v", err, got.Status)
	}

	// LinkDatasetUpdates is a no-op on re-link.
	dataset := testutil.SeedDataset(t, ctx, tx, "host-stats")
	update := testutil.SeedDatasetUpdate(t, ctx, tx, dataset.ID, "datasets/host-stats/v1/manifest.json")
	if err := repo.LinkDatasetUpdates(dbc, newer.ID, []uuid.UUID{update.ID}); err != nil {
		t.Fatalf("LinkDatasetUpdates: %v", err)
	}
	if err := repo.LinkDatasetUpdates(dbc, newer.ID, []uuid.UUID{update.ID}); err != nil {
		t.Fatalf("LinkDatasetUpdates (re-link): %v", err)
	}
	var linkCount int64
	if err := tx.Model(&types.RunDatasetUpdate{}).Where("run_id = ?", newer.ID).Count(&linkCount).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if linkCount != 1 {
		t.Fatalf("LinkDatasetUpdates: expected 1 link, got %d", linkCount)
	}

	// ListRecent walks requested_at DESC.
	recent, err := repo.ListRecent(dbc, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) < 2 {
		t.Fatalf("ListRecent: expected at least 2, got %d", len(recent))
	}
	if recent[0].ID != newer.ID {
		t.Fatalf("ListRecent: expected %v first, got %v", newer.ID, recent[0].ID)
	}
}
