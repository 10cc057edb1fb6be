package publishers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsClient defines the minimal subset of the SQS client used by sqsPublisher.
type sqsClient interface {
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// sqsPublisher implements the Producer interface for AWS SQS.
type sqsPublisher struct {
	id       string
	queueURL string
	typ      string
	client   sqsClient
	log      Logger
}

// newSQSProducer creates a new SQS publisher with the given configuration.
func newSQSProducer(ctx context.Context, cfg PublisherConfig, log Logger) (Producer, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSConfig)
	if err != nil {
		return nil, err
	}

	return &sqsPublisher{
		id:       cfg.ID,
		typ:      TypeSQS,
		queueURL: cfg.SQS.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      orDiscard(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return s.typ }

func (s *sqsPublisher) NewBatch(context.Context) (Batch, error) {
	return newLimitedBatch(s, awsMaxBatchEntries, awsMaxBatchBytes), nil
}

// SendBatch sends the batch to the configured SQS queue in one SendMessageBatch call.
func (s *sqsPublisher) SendBatch(ctx context.Context, batch Batch) error {
	b, err := ownBatch(s, batch)
	if err != nil {
		return err
	}

	entries := make([]types.SendMessageBatchRequestEntry, 0, len(b.events))
	for i, evt := range b.events {
		entry := types.SendMessageBatchRequestEntry{
			Id:          aws.String(strconv.Itoa(i)),
			MessageBody: aws.String(string(evt.Body)),
		}
		if attrs := sqsAttributes(evt); len(attrs) > 0 {
			entry.MessageAttributes = attrs
		}
		entries = append(entries, entry)
	}

	out, err := s.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(s.queueURL),
		Entries:  entries,
	})
	if err != nil {
		s.log.ErrorObj("sqs publisher send failed", "publisher_sqs_error", map[string]any{
			"publisher_id": s.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("send message batch to sqs: %w", err)
	}

	failures := make([]batchFailure, 0, len(out.Failed))
	for _, f := range out.Failed {
		failures = append(failures, batchFailure{ID: aws.ToString(f.Id), Code: aws.ToString(f.Code), Message: aws.ToString(f.Message)})
	}
	if err := joinBatchFailures(TypeSQS, failures); err != nil {
		return err
	}

	s.log.DebugObj("sqs publisher delivered batch", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"events":       len(out.Successful),
	})
	return nil
}

// Close is a no-op; the SDK client holds no connection of its own.
func (s *sqsPublisher) Close(context.Context) error { return nil }

func sqsAttributes(evt Event) map[string]types.MessageAttributeValue {
	attrs := make(map[string]types.MessageAttributeValue, len(evt.Properties)+1)
	for k, v := range evt.Properties {
		attrs[k] = types.MessageAttributeValue{DataType: aws.String(stringAttributeType), StringValue: aws.String(v)}
	}
	if evt.ContentType != "" {
		attrs["content_type"] = types.MessageAttributeValue{DataType: aws.String(stringAttributeType), StringValue: aws.String(evt.ContentType)}
	}
	return attrs
}
