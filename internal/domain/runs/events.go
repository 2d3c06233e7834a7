package runs

import (
	"encoding/json"

	"github.com/google/uuid"
)

// ProjectionUpdateEvent is the inbound "a dataset version landed" event.
type ProjectionUpdateEvent struct {
	Event               string    `json:"event"`
	DatasetID           uuid.UUID `json:"dataset_id"`
	Bucket              string    `json:"bucket,omitempty"`
	VersionManifestPath string    `json:"version_manifest_path"`
	ProjectionsPath     string    `json:"projections_path"`
}

// EventProjectionUpdate is the discriminator value for ProjectionUpdateEvent.
const EventProjectionUpdate = "projection_update"

// RunInput names one series of one dataset the worker must read.
type RunInput struct {
	DatasetID  uuid.UUID `json:"datasetId"`
	SeriesCode string    `json:"seriesCode"`
}

// CatalogEntry points at the latest manifest and projection data for one
// required dataset.
type CatalogEntry struct {
	ManifestPath    string `json:"manifestPath"`
	ProjectionsPath string `json:"projectionsPath"`
}

// RunCatalog maps required dataset ids to their version pointers.
type RunCatalog struct {
	Datasets map[string]CatalogEntry `json:"datasets"`
}

// RunOutput tells the worker where computed metric data goes.
type RunOutput struct {
	BasePath string `json:"basePath"`
}

// RunRequestEvent is the outbound computation request, published once per
// satisfied run. For FIFO delivery the metric code orders per-metric runs
// and the run id deduplicates retried emissions.
type RunRequestEvent struct {
	Type                   string          `json:"type"`
	RunID                  uuid.UUID       `json:"runId"`
	MetricCode             string          `json:"metricCode"`
	ExpressionType         string          `json:"expressionType"`
	ExpressionJSON         json.RawMessage `json:"expressionJson"`
	Inputs                 []RunInput      `json:"inputs"`
	Catalog                RunCatalog      `json:"catalog"`
	Output                 RunOutput       `json:"output"`
	MessageGroupID         string          `json:"messageGroupId,omitempty"`
	MessageDeduplicationID string          `json:"messageDeduplicationId,omitempty"`
}

// EventRunRequested is the discriminator value for RunRequestEvent.
const EventRunRequested = "metric_run_requested"

// RunStartedEvent signals the worker picked up a run.
type RunStartedEvent struct {
	Type      string    `json:"type"`
	RunID     uuid.UUID `json:"runId"`
	StartedAt string    `json:"startedAt,omitempty"`
}

// RunHeartbeatEvent signals the worker is still making progress.
type RunHeartbeatEvent struct {
	Type     string    `json:"type"`
	RunID    uuid.UUID `json:"runId"`
	Progress *float64  `json:"progress,omitempty"`
	Ts       string    `json:"ts"`
}

// Completion statuses reported by the worker.
const (
	CompletionSuccess = "SUCCESS"
	CompletionFailure = "FAILURE"
)

// RunCompletedEvent carries the worker's terminal result for a run.
type RunCompletedEvent struct {
	Type           string    `json:"type"`
	RunID          uuid.UUID `json:"runId"`
	MetricCode     string    `json:"metricCode"`
	Status         string    `json:"status"`
	VersionTs      string    `json:"versionTs,omitempty"`
	OutputManifest string    `json:"outputManifest,omitempty"`
	RowCount       *int64    `json:"rowCount,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// Inbound discriminator values for lifecycle events.
const (
	EventRunStarted   = "metric_run_started"
	EventRunHeartbeat = "metric_run_heartbeat"
	EventRunCompleted = "metric_run_completed"
)
