package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeSQSClient struct {
	input  *sqs.SendMessageBatchInput
	failed []types.BatchResultErrorEntry
	err    error
	calls  int
}

func (f *fakeSQSClient) SendMessageBatch(_ context.Context, params *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	f.calls++
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	out := &sqs.SendMessageBatchOutput{Failed: f.failed}
	if len(f.failed) == 0 {
		for _, e := range params.Entries {
			out.Successful = append(out.Successful, types.SendMessageBatchResultEntry{Id: e.Id, MessageId: aws.String("msg-123")})
		}
	}
	return out, nil
}

func newTestSQSPublisher(client sqsClient) *sqsPublisher {
	return &sqsPublisher{
		id:       "cli",
		typ:      TypeSQS,
		queueURL: "https://sqs.us-east-2.amazonaws.com/123456789012/e2e",
		client:   client,
		log:      discardLogger{},
	}
}

func TestAWSSQSPublisherSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	pub := newTestSQSPublisher(client)

	batch, err := pub.NewBatch(context.Background())
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := batch.Add(Event{Body: []byte("hello world"), Properties: map[string]string{"run_id": "r1"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := pub.SendBatch(context.Background(), batch); err != nil {
		t.Fatalf("SendBatch returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != pub.queueURL {
		t.Fatalf("QueueUrl = %s", got)
	}
	if len(client.input.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(client.input.Entries))
	}
	entry := client.input.Entries[0]
	if aws.ToString(entry.MessageBody) != "hello world" {
		t.Fatalf("MessageBody = %s", aws.ToString(entry.MessageBody))
	}
	attr, ok := entry.MessageAttributes["run_id"]
	if !ok || aws.ToString(attr.StringValue) != "r1" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("run_id attribute missing or wrong: %#v", attr)
	}
}

func TestAWSSQSPublisherSendError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	pub := newTestSQSPublisher(client)

	batch, _ := pub.NewBatch(context.Background())
	_ = batch.Add(NewEvent("x"))
	if err := pub.SendBatch(context.Background(), batch); err == nil {
		t.Fatalf("expected error from SendBatch")
	}
}

func TestAWSSQSPublisherReportsFailedEntries(t *testing.T) {
	client := &fakeSQSClient{failed: []types.BatchResultErrorEntry{{
		Id:      aws.String("0"),
		Code:    aws.String("InvalidMessageContents"),
		Message: aws.String("bad body"),
	}}}
	pub := newTestSQSPublisher(client)

	batch, _ := pub.NewBatch(context.Background())
	_ = batch.Add(NewEvent("x"))
	err := pub.SendBatch(context.Background(), batch)
	if err == nil || !strings.Contains(err.Error(), "InvalidMessageContents") {
		t.Fatalf("expected failed entry error, got %v", err)
	}
}

func TestAWSSQSBatchLimits(t *testing.T) {
	pub := newTestSQSPublisher(&fakeSQSClient{})
	batch, _ := pub.NewBatch(context.Background())

	if err := batch.Add(Event{Body: make([]byte, awsMaxBatchBytes+1)}); !errors.Is(err, ErrEventTooLarge) {
		t.Fatalf("expected ErrEventTooLarge, got %v", err)
	}
	for i := 0; i < awsMaxBatchEntries; i++ {
		if err := batch.Add(NewEvent("x")); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if err := batch.Add(NewEvent("x")); !errors.Is(err, ErrBatchFull) {
		t.Fatalf("expected ErrBatchFull, got %v", err)
	}
}

func TestAWSSQSPublisherRejectsForeignBatch(t *testing.T) {
	client := &fakeSQSClient{}
	pub := newTestSQSPublisher(client)
	other := newTestSQSPublisher(client)

	batch, _ := other.NewBatch(context.Background())
	_ = batch.Add(NewEvent("x"))
	if err := pub.SendBatch(context.Background(), batch); !errors.Is(err, ErrForeignBatch) {
		t.Fatalf("expected ErrForeignBatch, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("client should not be called")
	}
}

func TestNewSQSProducerUsesStaticCredentials(t *testing.T) {
	pub, err := newSQSProducer(context.Background(), PublisherConfig{
		ID:   "q",
		Type: TypeSQS,
		SQS: &SQSPublisherConfig{
			AWSConfig: AWSConfig{Region: "eu-west-1", AccessKeyID: "AKID", SecretAccessKey: "secret"},
			QueueURL:  "https://sqs.eu-west-1.amazonaws.com/1/q",
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSQSProducer: %v", err)
	}
	if pub.Type() != TypeSQS || pub.ID() != "q" {
		t.Fatalf("unexpected publisher %s/%s", pub.Type(), pub.ID())
	}
	if err := pub.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
