package app

import (
	"github.com/yungbote/metrics-engine/internal/platform/logger"
	"github.com/yungbote/metrics-engine/internal/queue"
)

func wireConsumers(log *logger.Logger, cfg Config, serviceset Services) ([]*queue.Consumer, error) {
	var consumers []*queue.Consumer

	if cfg.ProjectionQueueEnabled {
		c, err := queue.NewConsumer(
			"projection-updates",
			cfg.ProjectionQueueURL,
			queue.ProjectionUpdateHandler(serviceset.ProjectionUpdate),
			log,
		)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, c)
	} else {
		log.Info("projection update consumer disabled")
	}

	if cfg.LifecycleQueueEnabled {
		c, err := queue.NewConsumer(
			"run-lifecycle",
			cfg.LifecycleQueueURL,
			queue.RunLifecycleHandler(serviceset.RunLifecycle),
			log,
		)
		if err != nil {
			return nil, err
		}
		consumers = append(consumers, c)
	} else {
		log.Info("run lifecycle consumer disabled")
	}

	return consumers, nil
}
