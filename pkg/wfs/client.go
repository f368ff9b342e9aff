// Package wfs implements a client for OGC Web Feature Services. It covers
// KVP GetCapabilities, GetFeature and DescribeFeatureType requests for WFS
// 1.0.0 services, plus building of XML GetFeature bodies for embedding in
// other OGC requests.
package wfs

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"github.com/kass/go-ogc-client/pkg/ows"
)

// DefaultVersion is the protocol version requested when none is configured.
const DefaultVersion = "1.0.0"

// Client issues requests against a single WFS endpoint.
type Client struct {
	url       string
	version   string
	transport *ows.Transport
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithVersion sets the WFS protocol version sent with every request.
func WithVersion(version string) Option {
	return func(c *Client) { c.version = version }
}

// WithTransport replaces the HTTP transport.
func WithTransport(t *ows.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a WFS client for the service base URL.
func New(serviceURL string, opts ...Option) *Client {
	c := &Client{
		url:       serviceURL,
		version:   DefaultVersion,
		transport: ows.NewTransport(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the configured service base URL.
func (c *Client) URL() string { return c.url }

// Version returns the configured protocol version.
func (c *Client) Version() string { return c.version }

func (c *Client) baseParams(request string) url.Values {
	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", c.version)
	params.Set("request", request)
	return params
}

func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	body, err := c.transport.Get(ctx, c.url, params)
	if err != nil {
		return nil, err
	}
	if report, ok := ParseServiceExceptionReport(body); ok {
		return nil, report
	}
	return body, nil
}
