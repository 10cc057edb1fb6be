// Package httpclient sends single webhook requests through resty.
package httpclient

import (
	"context"
	"errors"
	"time"

	"github.com/go-resty/resty/v2"
)

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response exposes the parts of a reply the webhook sink inspects.
type Response interface {
	StatusCode() int
	Body() []byte
}

// Client sends a Request. Implementations must honour ctx cancellation.
type Client interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// Resty is the Client used in production.
type Resty struct {
	rc *resty.Client
}

// NewResty returns a Client whose requests time out after timeout.
func NewResty(timeout time.Duration) *Resty {
	return &Resty{rc: resty.New().SetTimeout(timeout)}
}

func (c *Resty) Do(ctx context.Context, req Request) (Response, error) {
	if req.Method == "" || req.URL == "" {
		return nil, errors.New("httpclient: method and url are required")
	}
	r := c.rc.R().SetContext(ctx).SetHeaders(req.Headers)
	if req.Body != nil {
		r.SetBody(req.Body)
	}
	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp}, nil
}

// restyResponse satisfies Response through the embedded *resty.Response.
type restyResponse struct{ *resty.Response }
