package queue

import (
	"context"
	"testing"

	"github.com/google/uuid"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
)

type fakeLifecycleService struct {
	started    []*domainruns.RunStartedEvent
	heartbeats []*domainruns.RunHeartbeatEvent
	completed  []*domainruns.RunCompletedEvent
}

func (f *fakeLifecycleService) HandleStarted(_ context.Context, event *domainruns.RunStartedEvent) error {
	f.started = append(f.started, event)
	return nil
}

func (f *fakeLifecycleService) HandleHeartbeat(_ context.Context, event *domainruns.RunHeartbeatEvent) error {
	f.heartbeats = append(f.heartbeats, event)
	return nil
}

func (f *fakeLifecycleService) HandleCompleted(_ context.Context, event *domainruns.RunCompletedEvent) error {
	f.completed = append(f.completed, event)
	return nil
}

func TestRunLifecycleHandlerDispatch(t *testing.T) {
	svc := &fakeLifecycleService{}
	handler := RunLifecycleHandler(svc)
	runID := uuid.New()

	bodies := []string{
		`{"type":"metric_run_started","runId":"` + runID.String() + `"}`,
		`{"type":"metric_run_heartbeat","runId":"` + runID.String() + `","ts":"2026-03-15T12:00:00Z"}`,
		`{"type":"metric_run_completed","runId":"` + runID.String() + `","metricCode":"m1","status":"FAILURE","error":"boom"}`,
	}
	for _, body := range bodies {
		if err := handler(context.Background(), []byte(body)); err != nil {
			t.Fatalf("handler: %v", err)
		}
	}

	if len(svc.started) != 1 || len(svc.heartbeats) != 1 || len(svc.completed) != 1 {
		t.Fatalf("dispatch counts: started=%d heartbeats=%d completed=%d",
			len(svc.started), len(svc.heartbeats), len(svc.completed))
	}
	if svc.completed[0].Error != "boom" {
		t.Fatalf("got error %q", svc.completed[0].Error)
	}
}

func TestRunLifecycleHandlerRejectsUnknownType(t *testing.T) {
	handler := RunLifecycleHandler(&fakeLifecycleService{})
	if err := handler(context.Background(), []byte(`{"type":"metric_run_paused"}`)); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if err := handler(context.Background(), []byte(`garbage`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
