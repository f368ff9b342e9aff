package ows

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// Transport issues HTTP requests to OGC services. Responses that carry an
// ows:ExceptionReport are returned as errors regardless of HTTP status,
// because many servers report failures with a 200.
type Transport struct {
	client   *http.Client
	username string
	password string
	log      *zap.Logger
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) TransportOption {
	return func(t *Transport) { t.client.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) { t.client = c }
}

// WithBasicAuth sets credentials sent with every request.
func WithBasicAuth(username, password string) TransportOption {
	return func(t *Transport) {
		t.username = username
		t.password = password
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) TransportOption {
	return func(t *Transport) { t.log = l }
}

// NewTransport creates a Transport with a default timeout and a no-op logger.
func NewTransport(opts ...TransportOption) *Transport {
	t := &Transport{
		client: &http.Client{Timeout: defaultTimeout},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get issues a KVP GET request against the service base URL and returns the
// full response body.
func (t *Transport) Get(ctx context.Context, base string, params url.Values) ([]byte, error) {
	requestURL, err := BuildQueryURL(base, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return t.do(req)
}

// PostXML posts an XML document to the given URL and returns the full
// response body.
func (t *Transport) PostXML(ctx context.Context, rawURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	return t.do(req)
}

func (t *Transport) do(req *http.Request) ([]byte, error) {
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	t.log.Debug("service request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if report, ok := ParseExceptionReport(body); ok {
		return nil, report
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("service returned HTTP %d for %s", resp.StatusCode, req.URL)
	}
	return body, nil
}
