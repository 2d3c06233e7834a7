package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/metrics-engine/internal/domain"
	"github.com/yungbote/metrics-engine/internal/domain/catalog"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// In-memory repo fakes. They honor insertion order so first-match-wins
// behavior stays deterministic in tests.

type fakeMetricRepo struct {
	metrics []*types.Metric
}

func (f *fakeMetricRepo) Create(_ dbctx.Context, metric *types.Metric) (*types.Metric, error) {
	f.metrics = append(f.metrics, metric)
	return metric, nil
}

func (f *fakeMetricRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Metric, error) {
	for _, m := range f.metrics {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMetricRepo) GetByCode(_ dbctx.Context, code string) (*types.Metric, error) {
	for _, m := range f.metrics {
		if m.Code == code {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeMetricRepo) List(_ dbctx.Context) ([]*types.Metric, error) {
	return append([]*types.Metric{}, f.metrics...), nil
}

type fakeSeriesRepo struct {
	series []*types.Series
}

func (f *fakeSeriesRepo) Create(_ dbctx.Context, series *types.Series) (*types.Series, error) {
	f.series = append(f.series, series)
	return series, nil
}

func (f *fakeSeriesRepo) GetByCodes(_ dbctx.Context, codes []string) ([]*types.Series, error) {
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}
	var out []*types.Series
	for _, s := range f.series {
		if wanted[s.Code] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSeriesRepo) List(_ dbctx.Context) ([]*types.Series, error) {
	return append([]*types.Series{}, f.series...), nil
}

type fakeDatasetRepo struct {
	datasets   []*types.Dataset
	membership map[uuid.UUID][]string
}

func (f *fakeDatasetRepo) Create(_ dbctx.Context, dataset *types.Dataset) (*types.Dataset, error) {
	f.datasets = append(f.datasets, dataset)
	return dataset, nil
}

func (f *fakeDatasetRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Dataset, error) {
	for _, d := range f.datasets {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (f *fakeDatasetRepo) List(_ dbctx.Context) ([]*types.Dataset, error) {
	return append([]*types.Dataset{}, f.datasets...), nil
}

func (f *fakeDatasetRepo) AddSeries(_ dbctx.Context, datasetID, seriesID uuid.UUID) error {
	return nil
}

func (f *fakeDatasetRepo) GetBySeriesCodes(_ dbctx.Context, codes []string) ([]*types.Dataset, error) {
	wanted := make(map[string]bool, len(codes))
	for _, code := range codes {
		wanted[code] = true
	}
	var out []*types.Dataset
	for _, d := range f.datasets {
		for _, code := range f.membership[d.ID] {
			if wanted[code] {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeDatasetRepo) ListSeriesCodes(_ dbctx.Context, datasetID uuid.UUID) ([]string, error) {
	return append([]string{}, f.membership[datasetID]...), nil
}

type fakeMetricRunRepo struct {
	runs  []*types.MetricRun
	links map[uuid.UUID][]uuid.UUID
}

func (f *fakeMetricRunRepo) Create(_ dbctx.Context, run *types.MetricRun) (*types.MetricRun, error) {
	f.runs = append(f.runs, run)
	return run, nil
}

func (f *fakeMetricRunRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.MetricRun, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeMetricRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	run, err := f.GetByID(dbc, id)
	if err != nil || run == nil {
		return err
	}
	for key, value := range updates {
		switch key {
		case "status":
			run.Status = value.(domainruns.RunStatus)
		case "started_at":
			ts := value.(time.Time)
			run.StartedAt = &ts
		case "finished_at":
			ts := value.(time.Time)
			run.FinishedAt = &ts
		case "last_heartbeat_at":
			ts := value.(time.Time)
			run.LastHeartbeatAt = &ts
		case "error":
			run.Error = value.(string)
		case "version_ts":
			run.VersionTs = value.(string)
		case "manifest_path":
			run.ManifestPath = value.(string)
		case "row_count":
			count := value.(int64)
			run.RowCount = &count
		}
	}
	return nil
}

func (f *fakeMetricRunRepo) UpdateStatus(dbc dbctx.Context, id uuid.UUID, status domainruns.RunStatus) error {
	return f.UpdateFields(dbc, id, map[string]interface{}{"status": status})
}

func (f *fakeMetricRunRepo) LinkDatasetUpdates(_ dbctx.Context, runID uuid.UUID, updateIDs []uuid.UUID) error {
	if f.links == nil {
		f.links = map[uuid.UUID][]uuid.UUID{}
	}
	for _, updateID := range updateIDs {
		already := false
		for _, existing := range f.links[runID] {
			if existing == updateID {
				already = true
				break
			}
		}
		if !already {
			f.links[runID] = append(f.links[runID], updateID)
		}
	}
	return nil
}

func (f *fakeMetricRunRepo) ListRecent(_ dbctx.Context, limit int) ([]*types.MetricRun, error) {
	out := append([]*types.MetricRun{}, f.runs...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePendingDatasetRepo struct {
	rows []*types.PendingDataset
}

func (f *fakePendingDatasetRepo) Create(_ dbctx.Context, pending *types.PendingDataset) (*types.PendingDataset, error) {
	f.rows = append(f.rows, pending)
	return pending, nil
}

func (f *fakePendingDatasetRepo) ListByRunID(_ dbctx.Context, runID uuid.UUID) ([]*types.PendingDataset, error) {
	var out []*types.PendingDataset
	for _, row := range f.rows {
		if row.RunID == runID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePendingDatasetRepo) ListUnreceivedByDatasetID(_ dbctx.Context, datasetID uuid.UUID) ([]*types.PendingDataset, error) {
	var out []*types.PendingDataset
	for _, row := range f.rows {
		if row.DatasetID == datasetID && !row.Received {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakePendingDatasetRepo) CountUnreceivedByRunID(_ dbctx.Context, runID uuid.UUID) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.RunID == runID && !row.Received {
			count++
		}
	}
	return count, nil
}

func (f *fakePendingDatasetRepo) MarkReceived(_ dbctx.Context, runID, datasetID, updateID uuid.UUID) error {
	now := time.Now().UTC()
	for _, row := range f.rows {
		if row.RunID == runID && row.DatasetID == datasetID {
			row.Received = true
			row.ReceivedUpdateID = &updateID
			row.ReceivedAt = &now
		}
	}
	return nil
}

type fakeDatasetUpdateRepo struct {
	updates []*types.DatasetUpdate
}

func (f *fakeDatasetUpdateRepo) Create(_ dbctx.Context, update *types.DatasetUpdate) (*types.DatasetUpdate, error) {
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	f.updates = append(f.updates, update)
	return update, nil
}

func (f *fakeDatasetUpdateRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.DatasetUpdate, error) {
	for _, u := range f.updates {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeDatasetUpdateRepo) GetByEventKey(_ dbctx.Context, eventKey string) (*types.DatasetUpdate, error) {
	for _, u := range f.updates {
		if u.EventKey == eventKey {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeDatasetUpdateRepo) GetLatestByDatasetID(_ dbctx.Context, datasetID uuid.UUID) (*types.DatasetUpdate, error) {
	var latest *types.DatasetUpdate
	for _, u := range f.updates {
		if u.DatasetID != datasetID {
			continue
		}
		if latest == nil || !u.CreatedAt.Before(latest.CreatedAt) {
			latest = u
		}
	}
	return latest, nil
}

type fakeEventLogRepo struct {
	entries map[string]*types.EventLog
}

func (f *fakeEventLogRepo) Insert(_ dbctx.Context, entry *types.EventLog) (*types.EventLog, bool, error) {
	if f.entries == nil {
		f.entries = map[string]*types.EventLog{}
	}
	if existing, ok := f.entries[entry.EventKey]; ok {
		return existing, false, nil
	}
	entry.CreatedAt = time.Now().UTC()
	f.entries[entry.EventKey] = entry
	return entry, true, nil
}

func (f *fakeEventLogRepo) GetByEventKey(_ dbctx.Context, eventKey string) (*types.EventLog, error) {
	if entry, ok := f.entries[eventKey]; ok {
		return entry, nil
	}
	return nil, nil
}

func (f *fakeEventLogRepo) MarkProcessed(_ dbctx.Context, eventKey string, runID *uuid.UUID) error {
	entry, ok := f.entries[eventKey]
	if !ok {
		return nil
	}
	now := time.Now().UTC()
	entry.ProcessedAt = &now
	if runID != nil {
		entry.RunID = runID
	}
	return nil
}

type fakePublisher struct {
	events []*domainruns.RunRequestEvent
	err    error
}

func (f *fakePublisher) PublishRunRequest(_ context.Context, event *domainruns.RunRequestEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

// fakeTxRunner has no real transaction semantics; the fakes mutate in place.
type fakeTxRunner struct{}

func (fakeTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return fn(dbctx.Context{Ctx: ctx})
}

type testEnv struct {
	metrics   *fakeMetricRepo
	series    *fakeSeriesRepo
	datasets  *fakeDatasetRepo
	runs      *fakeMetricRunRepo
	pendings  *fakePendingDatasetRepo
	updates   *fakeDatasetUpdateRepo
	eventLog  *fakeEventLogRepo
	publisher *fakePublisher

	resolver     DependencyResolverService
	orchestrator RunOrchestratorService
	pendingRuns  PendingRunService
	projection   ProjectionUpdateService
	lifecycle    RunLifecycleService
	catalog      CatalogService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	env := &testEnv{
		metrics:   &fakeMetricRepo{},
		series:    &fakeSeriesRepo{},
		datasets:  &fakeDatasetRepo{membership: map[uuid.UUID][]string{}},
		runs:      &fakeMetricRunRepo{},
		pendings:  &fakePendingDatasetRepo{},
		updates:   &fakeDatasetUpdateRepo{},
		eventLog:  &fakeEventLogRepo{},
		publisher: &fakePublisher{},
	}

	env.resolver = NewDependencyResolverService(nil, log, env.metrics, env.series, env.datasets)
	env.orchestrator = NewRunOrchestratorService(
		nil, log,
		env.runs, env.pendings, env.updates, env.metrics, env.datasets,
		env.publisher, 7, "metrics-output",
	)
	env.pendingRuns = NewPendingRunService(nil, log, env.runs, env.pendings)
	env.projection = NewProjectionUpdateService(
		nil, log, fakeTxRunner{},
		env.eventLog, env.updates,
		env.resolver, env.orchestrator, env.pendingRuns,
		nil, false,
	)
	env.lifecycle = NewRunLifecycleService(nil, log, fakeTxRunner{}, env.runs)
	env.catalog = NewCatalogService(nil, log, fakeTxRunner{}, env.metrics, env.series, env.datasets)
	return env
}

func (env *testEnv) addSeries(t *testing.T, code string) *types.Series {
	t.Helper()
	s := &types.Series{ID: uuid.New(), Code: code}
	env.series.series = append(env.series.series, s)
	return s
}

func (env *testEnv) addDataset(t *testing.T, name string, codes ...string) *types.Dataset {
	t.Helper()
	d := &types.Dataset{ID: uuid.New(), Name: name}
	env.datasets.datasets = append(env.datasets.datasets, d)
	env.datasets.membership[d.ID] = codes
	return d
}

func (env *testEnv) addMetric(t *testing.T, code string, exprType catalog.ExpressionType, raw string) *types.Metric {
	t.Helper()
	m := &types.Metric{
		ID:             uuid.New(),
		Code:           code,
		ExpressionType: exprType,
		ExpressionJSON: datatypes.JSON([]byte(raw)),
	}
	env.metrics.metrics = append(env.metrics.metrics, m)
	return m
}

func projectionEvent(datasetID uuid.UUID, manifest string) *domainruns.ProjectionUpdateEvent {
	return &domainruns.ProjectionUpdateEvent{
		Event:               domainruns.EventProjectionUpdate,
		DatasetID:           datasetID,
		Bucket:              "data-bucket",
		VersionManifestPath: manifest,
		ProjectionsPath:     manifest + "/projections",
	}
}
