// Package wps implements a client for OGC Web Processing Services (WPS
// 1.0.0): capabilities and process discovery, Execute request submission
// and asynchronous status polling.
package wps

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kass/go-ogc-client/pkg/ows"
)

// DefaultVersion is the WPS protocol version this client speaks.
const DefaultVersion = "1.0.0"

// Client issues requests against a single WPS endpoint.
type Client struct {
	url       string
	version   string
	transport *ows.Transport
	log       *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the HTTP transport.
func WithTransport(t *ows.Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithLogger sets the client logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a WPS client for the service base URL.
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

// ProcessSummary is one wps:Process entry from the capabilities offerings.
type ProcessSummary struct {
	Identifier string `xml:"Identifier"`
	Title      string `xml:"Title"`
	Abstract   string `xml:"Abstract"`
}

// Capabilities holds the parsed WPS capabilities document.
type Capabilities struct {
	Meta      *ows.CapabilitiesMetadata
	Processes []ProcessSummary
}

// GetCapabilities fetches and parses the service capabilities document.
func (c *Client) GetCapabilities(ctx context.Context) (*Capabilities, error) {
	params := url.Values{}
	params.Set("service", "WPS")
	params.Set("request", "GetCapabilities")
	params.Set("version", c.version)

	body, err := c.transport.Get(ctx, c.url, params)
	if err != nil {
		return nil, err
	}

	meta, err := ows.ParseCapabilitiesMetadata(body)
	if err != nil {
		return nil, fmt.Errorf("wps: malformed capabilities document: %w", err)
	}

	var offerings struct {
		Processes []ProcessSummary `xml:"ProcessOfferings>Process"`
	}
	if err := xml.Unmarshal(body, &offerings); err != nil {
		return nil, fmt.Errorf("wps: malformed capabilities document: %w", err)
	}

	return &Capabilities{Meta: meta, Processes: offerings.Processes}, nil
}

// DescribeProcess fetches and parses the description of one process.
func (c *Client) DescribeProcess(ctx context.Context, identifier string) (*Process, error) {
	params := url.Values{}
	params.Set("service", "WPS")
	params.Set("request", "DescribeProcess")
	params.Set("version", c.version)
	params.Set("identifier", identifier)

	body, err := c.transport.Get(ctx, c.url, params)
	if err != nil {
		return nil, err
	}
	return ParseProcessDescription(body)
}

// Execute submits a process execution request. output, when non-empty,
// asks the server to store that output and run asynchronously; the returned
// Execution then polls the status location until completion.
func (c *Client) Execute(ctx context.Context, identifier string, inputs []ExecuteInput, output string) (*Execution, error) {
	request := BuildExecuteRequest(identifier, inputs, output)

	execution := &Execution{
		ID:        uuid.NewString(),
		url:       c.url,
		transport: c.transport,
		log:       c.log,
	}

	c.log.Info("submitting execute request",
		zap.String("execution_id", execution.ID),
		zap.String("process", identifier),
		zap.Int("inputs", len(inputs)),
	)

	body, err := c.transport.PostXML(ctx, c.url, []byte(request))
	if err != nil {
		return nil, fmt.Errorf("wps: execute request failed: %w", err)
	}
	if err := execution.parseResponse(body); err != nil {
		return nil, err
	}
	return execution, nil
}
