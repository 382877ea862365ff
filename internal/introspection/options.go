package introspection

import (
	"net/http"
	"time"
)

// Options configures the HTTP client used for introspection.
//
// Defaults:
// - Timeout:    30s (used only if the context has no deadline)
// - HTTPClient: http.DefaultClient
//
// All options are safe to leave zero-valued to use defaults.
type Options struct {
	Headers    map[string]string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Timeout:    30 * time.Second,
		HTTPClient: http.DefaultClient,
	}
}

func WithTimeout(d time.Duration) Option   { return func(o *Options) { o.Timeout = d } }
func WithHTTPClient(c *http.Client) Option { return func(o *Options) { o.HTTPClient = c } }
func WithHeader(key, value string) Option  { return func(o *Options) { setHeader(o, key, value) } }
func WithHeaders(h map[string]string) Option {
	return func(o *Options) {
		for k, v := range h {
			setHeader(o, k, v)
		}
	}
}

func setHeader(o *Options, key, value string) {
	if o.Headers == nil {
		o.Headers = make(map[string]string)
	}
	o.Headers[key] = value
}
