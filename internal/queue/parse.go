package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
)

// Malformed payloads are rejected here so the core services only ever see
// well-formed events.

func ParseProjectionUpdate(body []byte) (*domainruns.ProjectionUpdateEvent, error) {
	var event domainruns.ProjectionUpdateEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding projection update: %w", err)
	}
	if event.Event != domainruns.EventProjectionUpdate {
		return nil, fmt.Errorf("unexpected event %q, want %q", event.Event, domainruns.EventProjectionUpdate)
	}
	if event.DatasetID == uuid.Nil {
		return nil, fmt.Errorf("projection update missing dataset_id")
	}
	if event.VersionManifestPath == "" {
		return nil, fmt.Errorf("projection update missing version_manifest_path")
	}
	if event.ProjectionsPath == "" {
		return nil, fmt.Errorf("projection update missing projections_path")
	}
	return &event, nil
}

func ParseRunStarted(body []byte) (*domainruns.RunStartedEvent, error) {
	var event domainruns.RunStartedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding run started: %w", err)
	}
	if event.Type != domainruns.EventRunStarted {
		return nil, fmt.Errorf("unexpected type %q, want %q", event.Type, domainruns.EventRunStarted)
	}
	if event.RunID == uuid.Nil {
		return nil, fmt.Errorf("run started missing runId")
	}
	return &event, nil
}

func ParseRunHeartbeat(body []byte) (*domainruns.RunHeartbeatEvent, error) {
	var event domainruns.RunHeartbeatEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding run heartbeat: %w", err)
	}
	if event.Type != domainruns.EventRunHeartbeat {
		return nil, fmt.Errorf("unexpected type %q, want %q", event.Type, domainruns.EventRunHeartbeat)
	}
	if event.RunID == uuid.Nil {
		return nil, fmt.Errorf("run heartbeat missing runId")
	}
	if event.Ts == "" {
		return nil, fmt.Errorf("run heartbeat missing ts")
	}
	return &event, nil
}

func ParseRunCompleted(body []byte) (*domainruns.RunCompletedEvent, error) {
	var event domainruns.RunCompletedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decoding run completed: %w", err)
	}
	if event.Type != domainruns.EventRunCompleted {
		return nil, fmt.Errorf("unexpected type %q, want %q", event.Type, domainruns.EventRunCompleted)
	}
	if event.RunID == uuid.Nil {
		return nil, fmt.Errorf("run completed missing runId")
	}
	if event.MetricCode == "" {
		return nil, fmt.Errorf("run completed missing metricCode")
	}
	if event.Status != domainruns.CompletionSuccess && event.Status != domainruns.CompletionFailure {
		return nil, fmt.Errorf("run completed has invalid status %q", event.Status)
	}
	return &event, nil
}
