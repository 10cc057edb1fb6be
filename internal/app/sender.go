package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/samvad-event-sender/internal/config"
	"github.com/samvad-hq/samvad-event-sender/internal/logger"
	"github.com/samvad-hq/samvad-event-sender/internal/storage"
	"github.com/samvad-hq/samvad-event-sender/pkg/publishers"
)

var (
	// ErrUsage reports a wrong number of command-line arguments.
	ErrUsage = errors.New("expected exactly two arguments: <connection_string> <message_body>")
	// ErrPublisherUnavailable reports that no client is available for the resolved sink.
	ErrPublisherUnavailable = errors.New("publisher unavailable")
)

// UnavailableError carries the sink type that has no registered publisher.
type UnavailableError struct {
	Type string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("no publisher registered for sink type %q", e.Type)
}

func (e *UnavailableError) Unwrap() error { return ErrPublisherUnavailable }

// CheckArgs validates the positional arguments without touching any client.
func CheckArgs(args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	return nil
}

// Options configures a Sender.
type Options struct {
	Registry publishers.Registry
	Targets  *publishers.TargetRegistry
	Defaults publishers.Defaults
	Store    storage.Store
	Timeout  time.Duration
}

// Sender publishes a single message as a one-event batch.
type Sender struct {
	registry publishers.Registry
	targets  *publishers.TargetRegistry
	defaults publishers.Defaults
	store    storage.Store
	timeout  time.Duration
	log      logger.Logger
}

// NewSender builds a Sender. A nil registry makes every send fail as unavailable.
func NewSender(opts Options, log logger.Logger) *Sender {
	if log == nil {
		log = &logger.NopLogger{}
	}
	store := opts.Store
	if store == nil {
		store = storage.NopStore()
	}
	return &Sender{
		registry: opts.Registry,
		targets:  opts.Targets,
		defaults: opts.Defaults,
		store:    store,
		timeout:  opts.Timeout,
		log:      log,
	}
}

// NewSenderFromConfig wires targets, journal and defaults from cfg.
func NewSenderFromConfig(cfg *config.Config, registry publishers.Registry, log logger.Logger) (*Sender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	var targets *publishers.TargetRegistry
	if strings.TrimSpace(cfg.TargetsFile) != "" {
		reg, err := publishers.LoadTargets(cfg.TargetsFile)
		if err != nil {
			return nil, fmt.Errorf("load targets: %w", err)
		}
		targets = reg
		log.DebugObj("targets file loaded", "targets_meta", map[string]any{
			"path":  cfg.TargetsFile,
			"count": len(reg.All()),
		})
	}

	store, err := storage.NewStore(cfg.JournalType, cfg.JournalPath, storage.Options{
		Retention:       cfg.JournalRetention,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}

	return NewSender(Options{
		Registry: registry,
		Targets:  targets,
		Defaults: defaultsFromConfig(cfg),
		Store:    store,
		Timeout:  cfg.SendTimeout,
	}, log), nil
}

func defaultsFromConfig(cfg *config.Config) publishers.Defaults {
	return publishers.Defaults{
		SinkType:             cfg.SinkType,
		ApplicationID:        cfg.AppName,
		EventHubName:         cfg.EventHubName,
		EventHubPartitionKey: cfg.EventHubPartitionKey,
		AWS: publishers.AWSConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			SessionToken:    cfg.AWSSessionToken,
		},
		GCPCredentialsFile: cfg.GCPCredentialsFile,
		GCPEndpoint:        cfg.GCPPubSubEndpoint,
		HTTPMethod:         cfg.HTTPMethod,
		HTTPTimeoutSeconds: cfg.HTTPTimeoutSeconds,
	}
}

// Send delivers args[1] as one event to the target named by args[0].
// The producer is closed on every path once it has been constructed.
func (s *Sender) Send(ctx context.Context, args []string) error {
	if err := CheckArgs(args); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	connStr, body := args[0], args[1]

	target, err := publishers.Resolve(connStr, s.targets, s.defaults)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	var (
		build publishers.Builder
		ok    bool
	)
	if s.registry != nil {
		build, ok = s.registry.BuilderFor(target.Type)
	}
	if !ok {
		s.log.ErrorObj("publisher unavailable", "target", target.Summary())
		return &UnavailableError{Type: target.Type}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	rec := storage.Record{
		ID:     uuid.NewString(),
		Sink:   target.Type,
		Target: target.ID,
		Bytes:  len(body),
		SentAt: time.Now().UTC(),
	}
	start := time.Now()

	err = s.publish(ctx, build, target, body)
	s.journal(rec, err)

	if err != nil {
		s.log.ErrorObj("event send failed", "send_meta", map[string]any{
			"send_id": rec.ID,
			"target":  target.Summary(),
			"error":   err.Error(),
		})
		return err
	}
	s.log.InfoObj("event sent", "send_meta", map[string]any{
		"send_id":    rec.ID,
		"target":     target.Summary(),
		"bytes":      rec.Bytes,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

// publish runs the scoped part of a send: build, batch, add, send, close.
func (s *Sender) publish(ctx context.Context, build publishers.Builder, target publishers.PublisherConfig, body string) (err error) {
	producer, err := build(ctx, target, s.log)
	if err != nil {
		return fmt.Errorf("create %s producer: %w", target.Type, err)
	}
	defer func() {
		// Close must run even when ctx has been cancelled.
		if cerr := producer.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s producer: %w", target.Type, cerr))
		}
	}()

	batch, err := producer.NewBatch(ctx)
	if err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	if err := batch.Add(publishers.NewEvent(body)); err != nil {
		return fmt.Errorf("add event to batch: %w", err)
	}
	if err := producer.SendBatch(ctx, batch); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

func (s *Sender) journal(rec storage.Record, sendErr error) {
	rec.Status = storage.StatusSent
	if sendErr != nil {
		rec.Status = storage.StatusFailed
		rec.Error = sendErr.Error()
	}
	if err := s.store.Record(rec); err != nil {
		s.log.WarnObj("journal write failed", "error", err.Error())
	}
}

// Close releases the journal.
func (s *Sender) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}
