package queue

import (
	"context"
	"encoding/json"
	"fmt"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/services"
)

// lifecycleEnvelope peeks at the discriminator so one queue can carry all
// three worker callbacks.
type lifecycleEnvelope struct {
	Type string `json:"type"`
}

// ProjectionUpdateHandler adapts the projection-update pipeline to a queue
// handler.
func ProjectionUpdateHandler(svc services.ProjectionUpdateService) Handler {
	return func(ctx context.Context, body []byte) error {
		event, err := ParseProjectionUpdate(body)
		if err != nil {
			return err
		}
		_, err = svc.Handle(ctx, event)
		return err
	}
}

// RunLifecycleHandler dispatches started/heartbeat/completed callbacks from
// a single queue.
func RunLifecycleHandler(svc services.RunLifecycleService) Handler {
	return func(ctx context.Context, body []byte) error {
		var env lifecycleEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return fmt.Errorf("decoding lifecycle event: %w", err)
		}
		switch env.Type {
		case domainruns.EventRunStarted:
			event, err := ParseRunStarted(body)
			if err != nil {
				return err
			}
			return svc.HandleStarted(ctx, event)
		case domainruns.EventRunHeartbeat:
			event, err := ParseRunHeartbeat(body)
			if err != nil {
				return err
			}
			return svc.HandleHeartbeat(ctx, event)
		case domainruns.EventRunCompleted:
			event, err := ParseRunCompleted(body)
			if err != nil {
				return err
			}
			return svc.HandleCompleted(ctx, event)
		default:
			return fmt.Errorf("unknown lifecycle event type %q", env.Type)
		}
	}
}
