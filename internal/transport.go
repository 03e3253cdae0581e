package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request describes a single outbound HTTP exchange
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte
}

// Transport performs exactly one request/response exchange and returns the
// raw response body. HTTP status codes are not inspected: any response whose
// body could be read is a success.
type Transport interface {
	Send(ctx context.Context, req Request) ([]byte, error)
}

// HTTPTransport is the net/http implementation of Transport
type HTTPTransport struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPTransport creates a transport whose requests are bounded by timeout
func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

// Send issues req, building a fresh *http.Request and header set each time
func (t *HTTPTransport) Send(ctx context.Context, req Request) ([]byte, error) {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, &TransportError{Op: "build", URL: req.URL, Err: err}
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: "send", URL: req.URL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", URL: req.URL, Err: err}
	}
	if resp.StatusCode >= 400 {
		LogDebug("%s %s returned HTTP %d (passed through)", req.Method, req.URL, resp.StatusCode)
	}
	return data, nil
}

// String implements fmt.Stringer for debug output
func (t *HTTPTransport) String() string {
	return fmt.Sprintf("HTTPTransport(timeout=%s)", t.Timeout)
}
