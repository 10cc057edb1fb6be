// Package storage keeps an optional local journal of send attempts.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Record statuses.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Record describes one send attempt. It never holds the connection string or the body.
type Record struct {
	ID     string    `json:"id"`
	Sink   string    `json:"sink"`
	Target string    `json:"target"`
	Bytes  int       `json:"bytes"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Store persists send records.
type Store interface {
	Close() error
	Record(rec Record) error
	Lookup(id string) (Record, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	Retention       time.Duration
	CleanupInterval time.Duration
}

const (
	defaultRetention       = 7 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return NopStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Retention <= 0 {
		opts.Retention = defaultRetention
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// NopStore returns a Store that keeps nothing.
func NopStore() Store { return noopStore{} }

type noopStore struct{}

func (noopStore) Close() error                        { return nil }
func (noopStore) Record(Record) error                 { return nil }
func (noopStore) Lookup(string) (Record, bool, error) { return Record{}, false, nil }
