// Package introspection loads a GraphQL schema from a running endpoint or
// from a schema file on disk.
package introspection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	graphql "github.com/hasura/go-graphql-client"

	eventbus "github.com/hanpama/gqlopera/internal/eventbus"
	events "github.com/hanpama/gqlopera/internal/events"
	schema "github.com/hanpama/gqlopera/internal/schema"
)

// Source yields a raw schema payload and decodes it. Watch mode compares raw
// payloads between polls, so Fetch must not decode.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	Decode(data []byte) (*schema.Schema, error)
	String() string
}

// Load fetches and decodes src once.
func Load(ctx context.Context, src Source) (*schema.Schema, error) {
	data, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return src.Decode(data)
}

// Client runs the introspection query against a GraphQL endpoint over HTTP.
type Client struct {
	endpoint string
	opts     *Options
}

// New returns a Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, opts: o}
}

var _ Source = (*Client)(nil)

func (c *Client) String() string { return c.endpoint }

// Fetch runs the introspection query and returns the raw "data" object of the
// response.
func (c *Client) Fetch(ctx context.Context) (body []byte, err error) {
	if _, ok := ctx.Deadline(); !ok && c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	ex := &exchange{base: c.opts.HTTPClient.Transport}
	eventbus.Publish(ctx, events.FetchStart{Source: c.endpoint})
	defer func() {
		eventbus.Publish(ctx, events.FetchFinish{
			Source:   c.endpoint,
			Status:   ex.status,
			Bytes:    len(body),
			Err:      err,
			Duration: time.Since(start),
		})
	}()

	hc := *c.opts.HTTPClient
	hc.Transport = ex
	gql := graphql.NewClient(c.endpoint, &hc).WithRequestModifier(func(r *http.Request) {
		r.Header.Set("Accept", "application/json")
		for k, v := range c.opts.Headers {
			r.Header.Set(k, v)
		}
	})

	body, err = gql.ExecRaw(ctx, Query, nil, graphql.OperationName("IntrospectionQuery"))
	if err != nil {
		return nil, c.classify(ctx, ex, err)
	}
	return body, nil
}

// classify maps what the transport observed to the package's sentinel
// errors. GraphQL errors in a successful response are returned wrapped.
func (c *Client) classify(ctx context.Context, ex *exchange, err error) error {
	switch {
	case ex.err != nil && errors.Is(ex.err, syscall.ECONNREFUSED):
		return fmt.Errorf("%w: %s", ErrConnectionRefused, c.endpoint)
	case ctx.Err() != nil:
		return fmt.Errorf("fetch schema: %w", ctx.Err())
	case ex.err != nil:
		return fmt.Errorf("fetch schema: %w", ex.err)
	case ex.status == http.StatusUnauthorized:
		return ErrUnauthorized
	case ex.status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, c.endpoint)
	case ex.status < 200 || ex.status > 299:
		return fmt.Errorf("fetch schema: unexpected status %d: %s", ex.status, ex.snippet)
	}
	return fmt.Errorf("introspection query failed: %w", err)
}

// exchange is the round tripper handed to the GraphQL client. It records the
// status of the single request it carries, plus the start of the body for
// non-2xx answers, or the transport error.
type exchange struct {
	base    http.RoundTripper
	status  int
	snippet []byte
	err     error
}

func (e *exchange) RoundTrip(req *http.Request) (*http.Response, error) {
	base := e.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		e.err = err
		return nil, err
	}
	e.status = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		e.snippet = bytes.TrimSpace(data)
		resp.Body = io.NopCloser(bytes.NewReader(data))
	}
	return resp, nil
}

// Decode parses an introspection response.
func (c *Client) Decode(data []byte) (*schema.Schema, error) {
	return schema.ParseIntrospection(data)
}

// Schema fetches and decodes the endpoint's schema.
func (c *Client) Schema(ctx context.Context) (*schema.Schema, error) {
	return Load(ctx, c)
}
