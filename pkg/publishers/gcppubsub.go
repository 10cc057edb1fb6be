package publishers

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

const (
	pubsubMaxBatchMessages = 1000
	pubsubMaxBatchBytes    = 10 * 1000 * 1000
)

// gcpPubSubPublisher implements the Producer interface for Google Cloud Pub/Sub.
type gcpPubSubPublisher struct {
	id     string
	typ    string
	client *pubsub.Client
	topic  *pubsub.Topic
	log    Logger
}

// newGCPPubSubProducer honours PUBSUB_EMULATOR_HOST through the client library.
func newGCPPubSubProducer(ctx context.Context, cfg PublisherConfig, log Logger) (Producer, error) {
	if cfg.PubSub == nil {
		return nil, fmt.Errorf("publisher %q missing gcppubsub configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.PubSub.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.PubSub.CredentialsFile))
	}
	if cfg.PubSub.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.PubSub.Endpoint))
	}

	client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubPublisher{
		id:     cfg.ID,
		typ:    TypeGCPPubSub,
		client: client,
		topic:  client.Topic(cfg.PubSub.Topic),
		log:    orDiscard(log),
	}, nil
}

func (g *gcpPubSubPublisher) ID() string   { return g.id }
func (g *gcpPubSubPublisher) Type() string { return g.typ }

func (g *gcpPubSubPublisher) NewBatch(context.Context) (Batch, error) {
	return newLimitedBatch(g, pubsubMaxBatchMessages, pubsubMaxBatchBytes), nil
}

// SendBatch publishes every message and waits for each server ack.
func (g *gcpPubSubPublisher) SendBatch(ctx context.Context, batch Batch) error {
	b, err := ownBatch(g, batch)
	if err != nil {
		return err
	}

	results := make([]*pubsub.PublishResult, 0, len(b.events))
	for _, evt := range b.events {
		msg := &pubsub.Message{Data: evt.Body}
		if len(evt.Properties) > 0 || evt.ContentType != "" {
			msg.Attributes = make(map[string]string, len(evt.Properties)+1)
			for k, v := range evt.Properties {
				msg.Attributes[k] = v
			}
			if evt.ContentType != "" {
				msg.Attributes["content_type"] = evt.ContentType
			}
		}
		results = append(results, g.topic.Publish(ctx, msg))
	}

	var errs []error
	ids := make([]string, 0, len(results))
	for i, res := range results {
		id, err := res.Get(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("pubsub message %d: %w", i, err))
			continue
		}
		ids = append(ids, id)
	}
	if err := errors.Join(errs...); err != nil {
		g.log.ErrorObj("pubsub publisher send failed", "publisher_pubsub_error", map[string]any{
			"publisher_id": g.id,
			"error":        err.Error(),
		})
		return err
	}

	g.log.DebugObj("pubsub publisher delivered batch", "publisher_pubsub_delivery", map[string]any{
		"publisher_id": g.id,
		"message_ids":  ids,
	})
	return nil
}

// Close flushes the topic's publish goroutines and closes the gRPC connection.
func (g *gcpPubSubPublisher) Close(context.Context) error {
	g.topic.Stop()
	if err := g.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
