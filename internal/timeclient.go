package internal

import (
	"context"
	"net/http"
)

// TimeClient looks up the current time for one fixed timezone. It makes a
// single attempt; failures degrade to the fallback texts of ExtractTime.
type TimeClient struct {
	Transport Transport
	Endpoint  string
}

// NewTimeClient creates a time lookup against endpoint
func NewTimeClient(t Transport, endpoint string) *TimeClient {
	return &TimeClient{Transport: t, Endpoint: endpoint}
}

// Fetch returns the datetime reported by the service, or a fallback text
func (c *TimeClient) Fetch(ctx context.Context) Extraction {
	body, err := c.Transport.Send(ctx, Request{Method: http.MethodGet, URL: c.Endpoint})
	if err != nil {
		LogError("Time lookup failed: %v", err)
		body = nil
	}
	ex := ExtractTime(string(body))
	if !ex.OK() {
		LogDebug("Time lookup fell back (%s)", ex.Outcome)
	}
	return ex
}
