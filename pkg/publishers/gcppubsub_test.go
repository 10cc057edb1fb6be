package publishers

import (
	"context"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	// Use the in-memory Pub/Sub emulator.
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "topic-1"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	cfg, err := Resolve("pubsub://test-project/topic-1", nil, Defaults{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	pub, err := newGCPPubSubProducer(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubProducer: %v", err)
	}

	batch, err := pub.NewBatch(ctx)
	if err != nil {
		t.Fatalf("NewBatch: %v", err)
	}
	if err := batch.Add(Event{Body: []byte("hello world"), Properties: map[string]string{"run_id": "r1"}}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := pub.SendBatch(ctx, batch); err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if err := pub.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message on emulator, got %d", len(msgs))
	}
	if string(msgs[0].Data) != "hello world" || msgs[0].Attributes["run_id"] != "r1" {
		t.Fatalf("unexpected message %+v", msgs[0])
	}
}

func TestGCPPubSubPublisherMissingTopicFails(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	pub, err := newGCPPubSubProducer(ctx, PublisherConfig{
		ID:     "ps",
		Type:   TypeGCPPubSub,
		PubSub: &GCPQueueConfig{ProjectID: "test-project", Topic: "missing"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubProducer: %v", err)
	}
	defer pub.Close(ctx)

	batch, _ := pub.NewBatch(ctx)
	_ = batch.Add(NewEvent("x"))
	if err := pub.SendBatch(ctx, batch); err == nil {
		t.Fatalf("expected publish to a missing topic to fail")
	}
}
