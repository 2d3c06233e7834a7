package services

import (
	"context"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
)

// RunRequestPublisher sends run-request payloads to the outbound topic.
// Implementations must honor the event's MessageGroupID/MessageDeduplicationID
// when the transport supports ordered, deduplicated delivery.
type RunRequestPublisher interface {
	PublishRunRequest(ctx context.Context, event *domainruns.RunRequestEvent) error
}

// ManifestStore checks for the presence of version manifests in object
// storage before an update is persisted.
type ManifestStore interface {
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
}
