package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

// SQSAPI is the subset of the SQS client used by Consumer.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, input *sqs.ReceiveMessageInput, opts ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput, opts ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler processes one raw message body. Returning an error leaves the
// message on the queue for redelivery.
type Handler func(ctx context.Context, body []byte) error

// Consumer long-polls one SQS queue and feeds message bodies to a handler.
type Consumer struct {
	client   SQSAPI
	queueURL string
	name     string
	handler  Handler
	log      *logger.Logger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithSQSClient sets a custom SQS client (useful for testing).
func WithSQSClient(c SQSAPI) ConsumerOption {
	return func(cons *Consumer) { cons.client = c }
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(name, queueURL string, handler Handler, baseLog *logger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if queueURL == "" {
		return nil, fmt.Errorf("queue URL required for consumer %s", name)
	}
	c := &Consumer{
		queueURL: queueURL,
		name:     name,
		handler:  handler,
		log:      baseLog.With("consumer", name),
	}
	for _, o := range opts {
		o(c)
	}
	if c.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		c.client = sqs.NewFromConfig(cfg)
	}
	return c, nil
}

// Run polls until the context is canceled. Handler failures are logged and
// the message is left in flight so the queue redelivers it; at-least-once
// delivery plus the idempotency ledger downstream makes that safe.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("consumer started", "queue_url", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("consumer stopped")
			return nil
		default:
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return nil
			}
			c.log.Error("receive failed", "error", err.Error())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, msg := range out.Messages {
			body := []byte(aws.ToString(msg.Body))
			if err := c.handler(ctx, UnwrapEnvelope(body)); err != nil {
				c.log.Error("handler failed, message will be redelivered",
					"message_id", aws.ToString(msg.MessageId),
					"error", err.Error())
				continue
			}
			if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(c.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				c.log.Error("delete failed",
					"message_id", aws.ToString(msg.MessageId),
					"error", err.Error())
			}
		}
	}
}
