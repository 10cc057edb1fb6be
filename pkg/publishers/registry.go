package publishers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Builder creates a Producer from a target config.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Producer, error)

// Registry maps publisher types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	BuilderFor(typ string) (Builder, bool)
	Types() []string
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{
		builders: make(map[string]Builder),
	}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a publisher type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// BuilderFor returns the builder registered for typ.
func (r *registry) BuilderFor(typ string) (Builder, bool) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	r.mu.RLock()
	builder, ok := r.builders[typ]
	r.mu.RUnlock()

	return builder, ok && builder != nil
}

// Types lists registered publisher types in sorted order.
func (r *registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.builders))
	for typ := range r.builders {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry wires up known publishers.
func DefaultRegistry() Registry {
	builders := map[string]Builder{
		TypeEventHub:  newEventHubProducer,
		TypeSQS:       newSQSProducer,
		TypeSNS:       newSNSProducer,
		TypeGCPPubSub: newGCPPubSubProducer,
		TypeHTTP:      newHTTPProducer,
	}
	return NewRegistry(builders)
}

var clientModules = map[string]struct{ name, module string }{
	TypeEventHub:  {"azeventhubs", "github.com/Azure/azure-sdk-for-go/sdk/messaging/azeventhubs"},
	TypeSQS:       {"aws-sdk-go-v2/service/sqs", "github.com/aws/aws-sdk-go-v2/service/sqs"},
	TypeSNS:       {"aws-sdk-go-v2/service/sns", "github.com/aws/aws-sdk-go-v2/service/sns"},
	TypeGCPPubSub: {"cloud pubsub", "cloud.google.com/go/pubsub"},
	TypeHTTP:      {"resty", "github.com/go-resty/resty/v2"},
}

// InstallHint tells the user which client module provides the publisher for typ.
func InstallHint(typ string) string {
	typ = strings.TrimSpace(strings.ToLower(typ))
	mod, ok := clientModules[typ]
	if !ok {
		return fmt.Sprintf("No publisher available for sink type %q (supported: %s, %s, %s, %s, %s)",
			typ, TypeEventHub, TypeSQS, TypeSNS, TypeGCPPubSub, TypeHTTP)
	}
	return fmt.Sprintf("Install %s: go get %s", mod.name, mod.module)
}
