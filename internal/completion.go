package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ChatMessage is one entry of the completion request's messages array
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionPayload struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// CompletionResult is the outcome of one logical completion call.
// An empty Body means no usable response was obtained after all retries.
type CompletionResult struct {
	Body     string
	Elapsed  time.Duration // duration of the attempt that produced this result
	Attempts int
	Err      error // last transport error when Body is empty because retries ran out
}

// Failed reports whether the call exhausted its retry budget
func (r CompletionResult) Failed() bool {
	return r.Err != nil
}

// CompletionClient sends chat messages with a bounded, constant-delay retry
type CompletionClient struct {
	Transport  Transport
	Endpoint   string
	Model      string
	MaxRetries int
	RetryDelay time.Duration

	// Sleep and Now are replaced in tests
	Sleep func(time.Duration)
	Now   func() time.Time
}

// NewCompletionClient creates a client with the default retry budget and delay
func NewCompletionClient(t Transport, endpoint, model string) *CompletionClient {
	return &CompletionClient{
		Transport:  t,
		Endpoint:   endpoint,
		Model:      model,
		MaxRetries: DefaultMaxRetries,
		RetryDelay: DefaultRetryDelay,
		Sleep:      time.Sleep,
		Now:        time.Now,
	}
}

// Complete sends message with apiKey as bearer credential. Transport failures
// are retried up to MaxRetries times with RetryDelay between attempts; the
// delay blocks the caller. HTTP error statuses are returned as ordinary bodies.
func (c *CompletionClient) Complete(ctx context.Context, message, apiKey string) CompletionResult {
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}

	remaining := c.MaxRetries
	if remaining < 0 {
		remaining = 0
	}

	var result CompletionResult
	for {
		result.Attempts++
		req, err := c.buildRequest(message, apiKey)
		if err != nil {
			LogError("Failed to build completion request: %v", err)
			result.Body = ""
			result.Err = err
			return result
		}

		start := now()
		body, err := c.Transport.Send(ctx, req)
		result.Elapsed = now().Sub(start)

		if err == nil {
			result.Body = string(body)
			result.Err = nil
			LogDebug("Completion succeeded on attempt %d in %s", result.Attempts, result.Elapsed)
			return result
		}

		if remaining <= 0 {
			LogError("Failed after retries: %v", err)
			result.Body = ""
			result.Err = err
			return result
		}
		remaining--
		LogDebug("Completion attempt %d failed (%v), retrying in %s (%d left)", result.Attempts, err, c.RetryDelay, remaining)
		sleep(c.RetryDelay)
	}
}

func (c *CompletionClient) buildRequest(message, apiKey string) (Request, error) {
	payload, err := json.Marshal(completionPayload{
		Model:    c.Model,
		Messages: []ChatMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	return Request{
		Method: http.MethodPost,
		URL:    c.Endpoint,
		Header: map[string]string{
			"Authorization": "Bearer " + apiKey,
			"Content-Type":  "application/json",
		},
		Body: payload,
	}, nil
}
