package publishers

import (
	"context"
	"errors"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"
)

// eventHubBatch is the subset of *azeventhubs.EventDataBatch used by eventHubProducer.
type eventHubBatch interface {
	AddEventData(ed *azeventhubs.EventData, options *azeventhubs.AddEventDataOptions) error
	NumEvents() int32
	NumBytes() uint64
}

// eventHubClient defines the minimal producer surface used by eventHubProducer.
type eventHubClient interface {
	NewBatch(ctx context.Context, options *azeventhubs.EventDataBatchOptions) (eventHubBatch, error)
	SendBatch(ctx context.Context, batch eventHubBatch) error
	Close(ctx context.Context) error
}

// azureProducerClient adapts *azeventhubs.ProducerClient to eventHubClient.
type azureProducerClient struct {
	pc *azeventhubs.ProducerClient
}

func (a azureProducerClient) NewBatch(ctx context.Context, options *azeventhubs.EventDataBatchOptions) (eventHubBatch, error) {
	batch, err := a.pc.NewEventDataBatch(ctx, options)
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (a azureProducerClient) SendBatch(ctx context.Context, batch eventHubBatch) error {
	b, ok := batch.(*azeventhubs.EventDataBatch)
	if !ok {
		return ErrForeignBatch
	}
	return a.pc.SendEventDataBatch(ctx, b, nil)
}

func (a azureProducerClient) Close(ctx context.Context) error {
	return a.pc.Close(ctx)
}

// eventHubProducer implements the Producer interface for Azure Event Hubs.
type eventHubProducer struct {
	id           string
	typ          string
	partitionKey string
	client       eventHubClient
	log          Logger
}

// newEventHubProducer creates a producer client bound to the configured connection string.
// No network traffic happens until the first batch is requested.
func newEventHubProducer(_ context.Context, cfg PublisherConfig, log Logger) (Producer, error) {
	if cfg.EventHub == nil {
		return nil, fmt.Errorf("publisher %q missing eventhub configuration", cfg.ID)
	}

	pc, err := azeventhubs.NewProducerClientFromConnectionString(
		cfg.EventHub.ConnectionString,
		cfg.EventHub.EventHub,
		&azeventhubs.ProducerClientOptions{ApplicationID: cfg.EventHub.ApplicationID},
	)
	if err != nil {
		return nil, fmt.Errorf("create event hubs producer client: %w", err)
	}

	return &eventHubProducer{
		id:           cfg.ID,
		typ:          TypeEventHub,
		partitionKey: cfg.EventHub.PartitionKey,
		client:       azureProducerClient{pc: pc},
		log:          orDiscard(log),
	}, nil
}

func (e *eventHubProducer) ID() string   { return e.id }
func (e *eventHubProducer) Type() string { return e.typ }

// NewBatch asks the service for an empty batch sized to the link's message limit.
func (e *eventHubProducer) NewBatch(ctx context.Context) (Batch, error) {
	var opts *azeventhubs.EventDataBatchOptions
	if e.partitionKey != "" {
		key := e.partitionKey
		opts = &azeventhubs.EventDataBatchOptions{PartitionKey: &key}
	}

	inner, err := e.client.NewBatch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create event data batch: %w", err)
	}
	return &eventHubEventBatch{owner: e, inner: inner}, nil
}

// SendBatch publishes the batch; the call blocks until the service acknowledges it.
func (e *eventHubProducer) SendBatch(ctx context.Context, batch Batch) error {
	b, ok := batch.(*eventHubEventBatch)
	if !ok || b == nil || b.owner != e {
		return ErrForeignBatch
	}
	if b.Len() == 0 {
		return ErrEmptyBatch
	}

	if err := e.client.SendBatch(ctx, b.inner); err != nil {
		e.log.ErrorObj("eventhub publisher send failed", "publisher_eventhub_error", map[string]any{
			"publisher_id": e.id,
			"error":        err.Error(),
		})
		return fmt.Errorf("send event data batch: %w", err)
	}
	e.log.DebugObj("eventhub publisher delivered batch", "publisher_eventhub_delivery", map[string]any{
		"publisher_id": e.id,
		"events":       b.Len(),
		"bytes":        b.Size(),
	})
	return nil
}

// Close releases the AMQP connection held by the producer client.
func (e *eventHubProducer) Close(ctx context.Context) error {
	if err := e.client.Close(ctx); err != nil {
		return fmt.Errorf("close event hubs producer client: %w", err)
	}
	return nil
}

// eventHubEventBatch wraps the service-sized EventDataBatch.
type eventHubEventBatch struct {
	owner *eventHubProducer
	inner eventHubBatch
}

func (b *eventHubEventBatch) Add(evt Event) error {
	err := b.inner.AddEventData(toEventData(evt), nil)
	if errors.Is(err, azeventhubs.ErrEventDataTooLarge) {
		return fmt.Errorf("%w: %w", ErrEventTooLarge, err)
	}
	return err
}

func (b *eventHubEventBatch) Len() int  { return int(b.inner.NumEvents()) }
func (b *eventHubEventBatch) Size() int { return int(b.inner.NumBytes()) }

func toEventData(evt Event) *azeventhubs.EventData {
	ed := &azeventhubs.EventData{Body: evt.Body}
	if evt.ContentType != "" {
		ct := evt.ContentType
		ed.ContentType = &ct
	}
	if len(evt.Properties) > 0 {
		ed.Properties = make(map[string]any, len(evt.Properties))
		for k, v := range evt.Properties {
			ed.Properties[k] = v
		}
	}
	return ed
}
