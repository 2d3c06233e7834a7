package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/metrics-engine/internal/domain"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
)

func seedQueuedRun(env *testEnv, metricCode string) *types.MetricRun {
	run := &types.MetricRun{
		ID:          uuid.New(),
		MetricID:    uuid.New(),
		MetricCode:  metricCode,
		Status:      domainruns.StatusQueued,
		RequestedAt: time.Now().UTC(),
	}
	env.runs.runs = append(env.runs.runs, run)
	return run
}

func TestHandleStarted(t *testing.T) {
	env := newTestEnv(t)
	run := seedQueuedRun(env, "m1")

	startedAt := "2026-03-15T12:30:00Z"
	err := env.lifecycle.HandleStarted(context.Background(), &domainruns.RunStartedEvent{
		Type:      domainruns.EventRunStarted,
		RunID:     run.ID,
		StartedAt: startedAt,
	})
	if err != nil {
		t.Fatalf("HandleStarted: %v", err)
	}

	if run.Status != domainruns.StatusRunning {
		t.Fatalf("got status %s", run.Status)
	}
	want := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)
	if run.StartedAt == nil || !run.StartedAt.Equal(want) {
		t.Fatalf("got started at %v", run.StartedAt)
	}
	if run.LastHeartbeatAt == nil {
		t.Fatal("heartbeat not initialized on start")
	}
}

func TestHandleStartedMissingTimestampUsesNow(t *testing.T) {
	env := newTestEnv(t)
	run := seedQueuedRun(env, "m1")

	before := time.Now().UTC()
	err := env.lifecycle.HandleStarted(context.Background(), &domainruns.RunStartedEvent{
		Type:  domainruns.EventRunStarted,
		RunID: run.ID,
	})
	if err != nil {
		t.Fatalf("HandleStarted: %v", err)
	}
	if run.StartedAt == nil || run.StartedAt.Before(before) {
		t.Fatalf("got started at %v", run.StartedAt)
	}
}

func TestHandleHeartbeat(t *testing.T) {
	env := newTestEnv(t)
	run := seedQueuedRun(env, "m1")
	run.Status = domainruns.StatusRunning

	progress := 0.4
	err := env.lifecycle.HandleHeartbeat(context.Background(), &domainruns.RunHeartbeatEvent{
		Type:     domainruns.EventRunHeartbeat,
		RunID:    run.ID,
		Progress: &progress,
		Ts:       "2026-03-15T13:00:00Z",
	})
	if err != nil {
		t.Fatalf("HandleHeartbeat: %v", err)
	}

	want := time.Date(2026, 3, 15, 13, 0, 0, 0, time.UTC)
	if run.LastHeartbeatAt == nil || !run.LastHeartbeatAt.Equal(want) {
		t.Fatalf("got heartbeat %v", run.LastHeartbeatAt)
	}
	if run.Status != domainruns.StatusRunning {
		t.Fatalf("heartbeat changed status to %s", run.Status)
	}
}

func TestHandleCompletedSuccess(t *testing.T) {
	env := newTestEnv(t)
	run := seedQueuedRun(env, "m1")
	run.Status = domainruns.StatusRunning

	rowCount := int64(420)
	err := env.lifecycle.HandleCompleted(context.Background(), &domainruns.RunCompletedEvent{
		Type:           domainruns.EventRunCompleted,
		RunID:          run.ID,
		MetricCode:     "m1",
		Status:         domainruns.CompletionSuccess,
		VersionTs:      "2026-03-15T00:00:00Z",
		OutputManifest: "metrics/m1/v9/manifest.json",
		RowCount:       &rowCount,
	})
	if err != nil {
		t.Fatalf("HandleCompleted: %v", err)
	}

	if run.Status != domainruns.StatusSucceeded {
		t.Fatalf("got status %s", run.Status)
	}
	if run.FinishedAt == nil {
		t.Fatal("finished at not set")
	}
	if run.VersionTs != "2026-03-15T00:00:00Z" {
		t.Fatalf("got version ts %q", run.VersionTs)
	}
	if run.ManifestPath != "metrics/m1/v9/manifest.json" {
		t.Fatalf("got manifest path %q", run.ManifestPath)
	}
	if run.RowCount == nil || *run.RowCount != 420 {
		t.Fatalf("got row count %v", run.RowCount)
	}
}

func TestHandleCompletedFailure(t *testing.T) {
	env := newTestEnv(t)
	run := seedQueuedRun(env, "m1")
	run.Status = domainruns.StatusRunning

	err := env.lifecycle.HandleCompleted(context.Background(), &domainruns.RunCompletedEvent{
		Type:       domainruns.EventRunCompleted,
		RunID:      run.ID,
		MetricCode: "m1",
		Status:     domainruns.CompletionFailure,
		Error:      "worker out of memory",
	})
	if err != nil {
		t.Fatalf("HandleCompleted: %v", err)
	}
	if run.Status != domainruns.StatusFailed {
		t.Fatalf("got status %s", run.Status)
	}
	if run.Error != "worker out of memory" {
		t.Fatalf("got error %q", run.Error)
	}
}

// Lifecycle signals for unknown runs are stale callbacks, not failures.
func TestLifecycleUnknownRunIsLoggedNotFatal(t *testing.T) {
	env := newTestEnv(t)
	missing := uuid.New()

	if err := env.lifecycle.HandleStarted(context.Background(), &domainruns.RunStartedEvent{Type: domainruns.EventRunStarted, RunID: missing}); err != nil {
		t.Fatalf("HandleStarted: %v", err)
	}
	if err := env.lifecycle.HandleHeartbeat(context.Background(), &domainruns.RunHeartbeatEvent{Type: domainruns.EventRunHeartbeat, RunID: missing, Ts: "2026-03-15T13:00:00Z"}); err != nil {
		t.Fatalf("HandleHeartbeat: %v", err)
	}
	if err := env.lifecycle.HandleCompleted(context.Background(), &domainruns.RunCompletedEvent{Type: domainruns.EventRunCompleted, RunID: missing, MetricCode: "m1", Status: domainruns.CompletionSuccess}); err != nil {
		t.Fatalf("HandleCompleted: %v", err)
	}
}
