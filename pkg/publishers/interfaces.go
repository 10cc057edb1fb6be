package publishers

import (
	"context"
	"errors"
)

var (
	// ErrEventTooLarge is returned when an event cannot fit into a batch.
	ErrEventTooLarge = errors.New("event exceeds batch size limit")
	// ErrBatchFull is returned when a batch already holds its maximum number of events.
	ErrBatchFull = errors.New("batch is full")
	// ErrEmptyBatch is returned when sending a batch without events.
	ErrEmptyBatch = errors.New("batch contains no events")
	// ErrForeignBatch is returned when a producer is handed a batch it did not create.
	ErrForeignBatch = errors.New("batch was not created by this producer")
)

// Producer publishes batches of events to a single downstream sink
// (Event Hubs, SQS, SNS, Pub/Sub, HTTP). A Producer owns its transport
// connection until Close is called.
type Producer interface {
	ID() string
	Type() string
	NewBatch(ctx context.Context) (Batch, error)
	SendBatch(ctx context.Context, batch Batch) error
	Close(ctx context.Context) error
}

// Batch groups events for a single publish call.
type Batch interface {
	Add(evt Event) error
	Len() int
	Size() int
}

// Logger is the structured logging surface producers write to.
// The application logger in internal/logger satisfies it.
type Logger interface {
	InfoObj(msg, key string, obj any)
	DebugObj(msg, key string, obj any)
	WarnObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)
}

type discardLogger struct{}

func (discardLogger) InfoObj(string, string, any)  {}
func (discardLogger) DebugObj(string, string, any) {}
func (discardLogger) WarnObj(string, string, any)  {}
func (discardLogger) ErrorObj(string, string, any) {}

func orDiscard(log Logger) Logger {
	if log == nil {
		return discardLogger{}
	}
	return log
}
