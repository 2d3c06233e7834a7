package aws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"

	domainruns "github.com/yungbote/metrics-engine/internal/domain/runs"
	"github.com/yungbote/metrics-engine/internal/platform/logger"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{MessageId: aws.String("mid-1")}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func TestSNSPublisherFIFOAttributes(t *testing.T) {
	client := &fakeSNS{}
	publisher, err := NewSNSPublisher("arn:aws:sns:us-east-1:123:runs.fifo", true, testLogger(t), WithSNSClient(client))
	if err != nil {
		t.Fatalf("NewSNSPublisher: %v", err)
	}

	runID := uuid.New()
	event := &domainruns.RunRequestEvent{
		Type:                   domainruns.EventRunRequested,
		RunID:                  runID,
		MetricCode:             "gdp_ratio",
		MessageGroupID:         "gdp_ratio",
		MessageDeduplicationID: runID.String(),
	}
	if err := publisher.PublishRunRequest(context.Background(), event); err != nil {
		t.Fatalf("PublishRunRequest: %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(client.inputs))
	}
	input := client.inputs[0]
	if aws.ToString(input.MessageGroupId) != "gdp_ratio" {
		t.Fatalf("got group id %q", aws.ToString(input.MessageGroupId))
	}
	if aws.ToString(input.MessageDeduplicationId) != runID.String() {
		t.Fatalf("got dedup id %q", aws.ToString(input.MessageDeduplicationId))
	}

	var decoded domainruns.RunRequestEvent
	if err := json.Unmarshal([]byte(aws.ToString(input.Message)), &decoded); err != nil {
		t.Fatalf("decoding published message: %v", err)
	}
	if decoded.RunID != runID || decoded.Type != domainruns.EventRunRequested {
		t.Fatalf("published payload mismatch: %+v", decoded)
	}
}

func TestSNSPublisherDisabledDropsWithoutClient(t *testing.T) {
	publisher, err := NewSNSPublisher("", false, testLogger(t))
	if err != nil {
		t.Fatalf("NewSNSPublisher: %v", err)
	}
	event := &domainruns.RunRequestEvent{RunID: uuid.New(), MetricCode: "m1"}
	if err := publisher.PublishRunRequest(context.Background(), event); err != nil {
		t.Fatalf("disabled publisher should not error: %v", err)
	}
}

func TestSNSPublisherRequiresTopicWhenEnabled(t *testing.T) {
	if _, err := NewSNSPublisher("", true, testLogger(t), WithSNSClient(&fakeSNS{})); err == nil {
		t.Fatal("expected error for missing topic ARN")
	}
}
