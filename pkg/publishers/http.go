package publishers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-event-sender/pkg/httpclient"
)

const (
	httpMaxBatchEvents  = 100
	httpMaxBatchBytes   = 1 << 20
	httpDefaultMIMEType = "text/plain; charset=utf-8"
	httpPropertyPrefix  = "X-Event-"
)

type httpProducer struct {
	id      string
	method  string
	url     string
	headers map[string]string
	client  httpclient.Client
	typ     string
	log     Logger
}

func newHTTPProducer(_ context.Context, cfg PublisherConfig, log Logger) (Producer, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	client := httpclient.NewResty(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	return &httpProducer{
		id:      cfg.ID,
		typ:     TypeHTTP,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  client,
		log:     orDiscard(log),
	}, nil
}

func (h *httpProducer) ID() string   { return h.id }
func (h *httpProducer) Type() string { return h.typ }

func (h *httpProducer) NewBatch(context.Context) (Batch, error) {
	return newLimitedBatch(h, httpMaxBatchEvents, httpMaxBatchBytes), nil
}

// SendBatch issues one request per event, stopping at the first failure.
func (h *httpProducer) SendBatch(ctx context.Context, batch Batch) error {
	b, err := ownBatch(h, batch)
	if err != nil {
		return err
	}

	for i, evt := range b.events {
		if err := h.send(ctx, evt); err != nil {
			h.log.ErrorObj("http publisher send failed", "publisher_http_error", map[string]any{
				"publisher_id": h.id,
				"event_index":  i,
				"error":        err.Error(),
			})
			return err
		}
	}
	h.log.DebugObj("http publisher delivered batch", "publisher_http_delivery", map[string]any{
		"publisher_id": h.id,
		"events":       len(b.events),
	})
	return nil
}

func (h *httpProducer) send(ctx context.Context, evt Event) error {
	headers := make(map[string]string, len(h.headers)+len(evt.Properties)+1)
	for k, v := range h.headers {
		headers[k] = v
	}
	for k, v := range evt.Properties {
		headers[httpPropertyPrefix+k] = v
	}
	headers["Content-Type"] = httpDefaultMIMEType
	if evt.ContentType != "" {
		headers["Content-Type"] = evt.ContentType
	}

	resp, err := h.client.Do(ctx, httpclient.Request{
		Method:  h.method,
		URL:     h.url,
		Headers: headers,
		Body:    evt.Body,
	})
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		snippet := readBodySnippet(resp.Body())
		return fmt.Errorf("http response status %d: %s", code, snippet)
	}
	return nil
}

func (h *httpProducer) Close(context.Context) error { return nil }

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
