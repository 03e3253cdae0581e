package internal

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// ErrFakeTransport is the default failure returned by FakeTransport
var ErrFakeTransport = errors.New("fake transport: connection refused")

// FakeResponse is one scripted reply of a FakeTransport
type FakeResponse struct {
	Body string
	Err  error
}

// FakeTransport replays scripted responses in order and records every request.
// Once the script is exhausted the last response is repeated.
type FakeTransport struct {
	mu        sync.Mutex
	Responses []FakeResponse
	Requests  []Request
}

// NewFailingTransport fails the first n calls, then returns body
func NewFailingTransport(n int, body string) *FakeTransport {
	ft := &FakeTransport{}
	for i := 0; i < n; i++ {
		ft.Responses = append(ft.Responses, FakeResponse{Err: ErrFakeTransport})
	}
	ft.Responses = append(ft.Responses, FakeResponse{Body: body})
	return ft
}

// NewBrokenTransport always fails
func NewBrokenTransport() *FakeTransport {
	return &FakeTransport{Responses: []FakeResponse{{Err: ErrFakeTransport}}}
}

// Send implements Transport
func (f *FakeTransport) Send(ctx context.Context, req Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	if len(f.Responses) == 0 {
		return nil, ErrFakeTransport
	}
	idx := len(f.Requests) - 1
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	r := f.Responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return []byte(r.Body), nil
}

// Calls returns how many requests were sent
func (f *FakeTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// FakeClock advances by Step on every Now call and records sleeps
type FakeClock struct {
	Current time.Time
	Step    time.Duration
	Sleeps  []time.Duration
}

// NewFakeClock starts at a fixed instant
func NewFakeClock(step time.Duration) *FakeClock {
	return &FakeClock{
		Current: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Step:    step,
	}
}

// Now returns the current fake time, then advances it
func (c *FakeClock) Now() time.Time {
	t := c.Current
	c.Current = c.Current.Add(c.Step)
	return t
}

// Sleep records d without blocking
func (c *FakeClock) Sleep(d time.Duration) {
	c.Sleeps = append(c.Sleeps, d)
}

// CompletionBody builds a chat completion response containing content
func CompletionBody(content string) string {
	return `{"choices":[{"message":{"role":"assistant","content":` + quoteJSON(content) + `}}]}`
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// CreateTestSnapshot creates a snapshot with two sample turns
func CreateTestSnapshot(id string) *Snapshot {
	return CreateTestSnapshotWithTurns(id, []Turn{
		{Input: "Hello, how are you?", Reply: "I'm doing well, thank you!"},
		{Input: "what's the time in Italy?", Reply: "2024-01-01T12:00:00+01:00"},
	})
}

// CreateTestSnapshotWithTurns creates a snapshot with custom turns
func CreateTestSnapshotWithTurns(id string, turns []Turn) *Snapshot {
	return &Snapshot{
		ID:        id,
		UserName:  DefaultUserName,
		BotName:   DefaultBotName,
		StartedAt: "2024-01-01T11:58:00Z",
		Turns:     turns,
		Stats: Stats{
			ChatTurns:        1,
			TotalLatencyMs:   420.5,
			AverageLatencyMs: 420.5,
		},
	}
}
