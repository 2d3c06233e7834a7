package app

import (
	"github.com/yungbote/metrics-engine/internal/platform/envutil"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type Config struct {
	// Freshness window applied to every pending dataset dependency.
	RequiredDays int

	RunRequestTopicARN string
	PublishEnabled     bool

	ProjectionQueueURL     string
	ProjectionQueueEnabled bool
	LifecycleQueueURL      string
	LifecycleQueueEnabled  bool

	OutputBucket    string
	VerifyManifests bool

	Port        string
	Environment string
	Version     string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		RequiredDays: envutil.GetEnvAsInt("REQUIRED_DAYS", 7, log),

		RunRequestTopicARN: envutil.GetEnv("RUN_REQUEST_TOPIC_ARN", "", log),
		PublishEnabled:     envutil.GetEnvAsBool("PUBLISH_ENABLED", false, log),

		ProjectionQueueURL:     envutil.GetEnv("PROJECTION_QUEUE_URL", "", log),
		ProjectionQueueEnabled: envutil.GetEnvAsBool("PROJECTION_QUEUE_ENABLED", false, log),
		LifecycleQueueURL:      envutil.GetEnv("LIFECYCLE_QUEUE_URL", "", log),
		LifecycleQueueEnabled:  envutil.GetEnvAsBool("LIFECYCLE_QUEUE_ENABLED", false, log),

		OutputBucket:    envutil.GetEnv("METRICS_OUTPUT_BUCKET", "metrics-output", log),
		VerifyManifests: envutil.GetEnvAsBool("VERIFY_MANIFESTS", false, log),

		Port:        envutil.GetEnv("PORT", "8080", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     envutil.GetEnv("APP_VERSION", "", log),
	}
}
