package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/metrics-engine/internal/data/db"
	"github.com/yungbote/metrics-engine/internal/data/repos"
	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/dbctx"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// RunLifecycleService applies worker callbacks to run rows. A missing run is
// treated as a stale or duplicate callback and logged, never failed, so
// redelivered signals cannot poison the queue.
type RunLifecycleService interface {
	HandleStarted(ctx context.Context, event *domainruns.RunStartedEvent) error
	HandleHeartbeat(ctx context.Context, event *domainruns.RunHeartbeatEvent) error
	HandleCompleted(ctx context.Context, event *domainruns.RunCompletedEvent) error
}

type runLifecycleService struct {
	db       *gorm.DB
	log      *logger.Logger
	txRunner db.TxRunner
	runRepo  repos.MetricRunRepo
	now      func() time.Time
}

func NewRunLifecycleService(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	txRunner db.TxRunner,
	runRepo repos.MetricRunRepo,
) RunLifecycleService {
	return &runLifecycleService{
		db:       gdb,
		log:      baseLog.With("service", "RunLifecycleService"),
		txRunner: txRunner,
		runRepo:  runRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *runLifecycleService) HandleStarted(ctx context.Context, event *domainruns.RunStartedEvent) error {
	return s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		run, err := s.runRepo.GetByID(dbc, event.RunID)
		if err != nil {
			return err
		}
		if run == nil {
			s.log.Warn("started signal for unknown run", "run_id", event.RunID)
			return nil
		}

		startedAt := s.parseTs(event.StartedAt)
		s.warnOnInvalidTransition(run.Status, domainruns.StatusRunning, run.ID)
		if err := s.runRepo.UpdateFields(dbc, run.ID, map[string]interface{}{
			"status":            domainruns.StatusRunning,
			"started_at":        startedAt,
			"last_heartbeat_at": startedAt,
		}); err != nil {
			return err
		}
		s.log.Info("run started", "run_id", run.ID, "metric_code", run.MetricCode)
		return nil
	})
}

func (s *runLifecycleService) HandleHeartbeat(ctx context.Context, event *domainruns.RunHeartbeatEvent) error {
	return s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		run, err := s.runRepo.GetByID(dbc, event.RunID)
		if err != nil {
			return err
		}
		if run == nil {
			s.log.Warn("heartbeat for unknown run", "run_id", event.RunID)
			return nil
		}

		if err := s.runRepo.UpdateFields(dbc, run.ID, map[string]interface{}{
			"last_heartbeat_at": s.parseTs(event.Ts),
		}); err != nil {
			return err
		}
		// Progress is observability only, never persisted.
		if event.Progress != nil {
			s.log.Info("run heartbeat", "run_id", run.ID, "progress", *event.Progress)
		} else {
			s.log.Info("run heartbeat", "run_id", run.ID)
		}
		return nil
	})
}

func (s *runLifecycleService) HandleCompleted(ctx context.Context, event *domainruns.RunCompletedEvent) error {
	return s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		run, err := s.runRepo.GetByID(dbc, event.RunID)
		if err != nil {
			return err
		}
		if run == nil {
			s.log.Warn("completion for unknown run", "run_id", event.RunID)
			return nil
		}

		status := domainruns.StatusFailed
		if event.Status == domainruns.CompletionSuccess {
			status = domainruns.StatusSucceeded
		}
		s.warnOnInvalidTransition(run.Status, status, run.ID)

		updates := map[string]interface{}{
			"status":      status,
			"finished_at": s.now(),
		}
		if event.VersionTs != "" {
			updates["version_ts"] = event.VersionTs
		}
		if event.OutputManifest != "" {
			updates["manifest_path"] = event.OutputManifest
		}
		if event.RowCount != nil {
			updates["row_count"] = *event.RowCount
		}
		if event.Error != "" {
			updates["error"] = event.Error
		}
		if err := s.runRepo.UpdateFields(dbc, run.ID, updates); err != nil {
			return err
		}
		s.log.Info("run completed",
			"run_id", run.ID,
			"metric_code", run.MetricCode,
			"status", status)
		return nil
	})
}

// Lifecycle signals win over the transition table. The table flags the
// suspicious jump for operators without rejecting the worker's report.
func (s *runLifecycleService) warnOnInvalidTransition(from, to domainruns.RunStatus, runID interface{}) {
	if !domainruns.CanTransition(from, to) {
		s.log.Warn("unexpected status transition",
			"run_id", runID,
			"from", from,
			"to", to)
	}
}

func (s *runLifecycleService) parseTs(raw string) time.Time {
	if raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC()
		}
		s.log.Warn("unparseable event timestamp, using now", "ts", raw)
	}
	return s.now()
}
