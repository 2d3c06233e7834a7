package aws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// SNSAPI is the subset of the SNS client used by SNSPublisher.
type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes run requests to an SNS FIFO topic. When disabled it
// logs the payload and drops it, which keeps local development decoupled
// from AWS.
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	enabled  bool
	log      *logger.Logger
}

// SNSPublisherOption configures an SNSPublisher.
type SNSPublisherOption func(*SNSPublisher)

// WithSNSClient sets a custom SNS client (useful for testing).
func WithSNSClient(c SNSAPI) SNSPublisherOption {
	return func(p *SNSPublisher) { p.client = c }
}

// NewSNSPublisher creates a run-request publisher for the given topic.
func NewSNSPublisher(topicARN string, enabled bool, baseLog *logger.Logger, opts ...SNSPublisherOption) (*SNSPublisher, error) {
	p := &SNSPublisher{
		topicARN: topicARN,
		enabled:  enabled,
		log:      baseLog.With("client", "SNSPublisher"),
	}
	for _, o := range opts {
		o(p)
	}
	if !p.enabled {
		return p, nil
	}
	if topicARN == "" {
		return nil, fmt.Errorf("SNS topic ARN required")
	}
	if p.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		p.client = sns.NewFromConfig(cfg)
	}
	return p, nil
}

// PublishRunRequest sends one run request. The metric code groups runs of
// the same metric in order and the run id deduplicates retried emissions.
func (p *SNSPublisher) PublishRunRequest(ctx context.Context, event *domainruns.RunRequestEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling run request: %w", err)
	}

	if !p.enabled {
		p.log.Info("publishing disabled, dropping run request",
			"run_id", event.RunID,
			"metric_code", event.MetricCode)
		return nil
	}

	input := &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(data)),
	}
	if event.MessageGroupID != "" {
		input.MessageGroupId = aws.String(event.MessageGroupID)
	}
	if event.MessageDeduplicationID != "" {
		input.MessageDeduplicationId = aws.String(event.MessageDeduplicationID)
	}
	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("publishing run request: %w", err)
	}

	p.log.Info("published run request",
		"run_id", event.RunID,
		"metric_code", event.MetricCode)
	return nil
}
