package publishers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsClient interface {
	PublishBatch(ctx context.Context, params *sns.PublishBatchInput, optFns ...func(*sns.Options)) (*sns.PublishBatchOutput, error)
}

// snsPublisher implements the Producer interface for AWS SNS topics.
type snsPublisher struct {
	id       string
	topicARN string
	typ      string
	client   snsClient
	log      Logger
}

func newSNSProducer(ctx context.Context, cfg PublisherConfig, log Logger) (Producer, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q missing sns configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSConfig)
	if err != nil {
		return nil, err
	}

	return &snsPublisher{
		id:       cfg.ID,
		typ:      TypeSNS,
		topicARN: cfg.SNS.TopicARN,
		client:   sns.NewFromConfig(awsCfg),
		log:      orDiscard(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return s.typ }

func (s *snsPublisher) NewBatch(context.Context) (Batch, error) {
	return newLimitedBatch(s, awsMaxBatchEntries, awsMaxBatchBytes), nil
}

func (s *snsPublisher) SendBatch(ctx context.Context, batch Batch) error {
	b, err := ownBatch(s, batch)
	if err != nil {
		return err
	}

	entries := make([]types.PublishBatchRequestEntry, 0, len(b.events))
	for i, evt := range b.events {
		entry := types.PublishBatchRequestEntry{
			Id:      aws.String(strconv.Itoa(i)),
			Message: aws.String(string(evt.Body)),
		}
		if attrs := snsAttributes(evt); len(attrs) > 0 {
			entry.MessageAttributes = attrs
		}
		entries = append(entries, entry)
	}

	out, err := s.client.PublishBatch(ctx, &sns.PublishBatchInput{
		TopicArn:                   aws.String(s.topicARN),
		PublishBatchRequestEntries: entries,
	})
	if err != nil {
		s.log.ErrorObj("sns publisher send failed", "publisher_sns_error", map[string]any{
			"publisher_id": s.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("publish batch to sns: %w", err)
	}

	failures := make([]batchFailure, 0, len(out.Failed))
	for _, f := range out.Failed {
		failures = append(failures, batchFailure{ID: aws.ToString(f.Id), Code: aws.ToString(f.Code), Message: aws.ToString(f.Message)})
	}
	if err := joinBatchFailures(TypeSNS, failures); err != nil {
		return err
	}

	s.log.DebugObj("sns publisher delivered batch", "publisher_sns_delivery", map[string]any{
		"publisher_id": s.id,
		"events":       len(out.Successful),
	})
	return nil
}

func (s *snsPublisher) Close(context.Context) error { return nil }

func snsAttributes(evt Event) map[string]types.MessageAttributeValue {
	attrs := make(map[string]types.MessageAttributeValue, len(evt.Properties)+1)
	for k, v := range evt.Properties {
		attrs[k] = types.MessageAttributeValue{DataType: aws.String(stringAttributeType), StringValue: aws.String(v)}
	}
	if evt.ContentType != "" {
		attrs["content_type"] = types.MessageAttributeValue{DataType: aws.String(stringAttributeType), StringValue: aws.String(evt.ContentType)}
	}
	return attrs
}
