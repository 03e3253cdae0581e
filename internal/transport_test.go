package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPTransport_Send(t *testing.T) {
	var gotAuth, gotType, gotBody, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr := NewHTTPTransport(5 * time.Second)
	body, err := tr.Send(context.Background(), Request{
		Method: http.MethodPost,
		URL:    srv.URL,
		Header: map[string]string{
			"Authorization": "Bearer sk-test",
			"Content-Type":  "application/json",
		},
		Body: []byte(`{"hello":"world"}`),
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("Send() body = %q", body)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotBody != `{"hello":"world"}` {
		t.Errorf("request body = %q", gotBody)
	}
}

func TestHTTPTransport_StatusBlind(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	body, err := NewHTTPTransport(5*time.Second).Send(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err != nil {
		t.Fatalf("Send() should not fail on HTTP 401, got %v", err)
	}
	if string(body) != `{"error":{"message":"bad key"}}` {
		t.Errorf("Send() body = %q", body)
	}
}

func TestHTTPTransport_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewHTTPTransport(time.Second).Send(context.Background(), Request{Method: http.MethodGet, URL: url})
	if err == nil {
		t.Fatal("Send() to a closed server should fail")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("Send() error should be *TransportError, got %T", err)
	}
	if terr.Op != "send" {
		t.Errorf("TransportError.Op = %q, want send", terr.Op)
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPTransport(50*time.Millisecond).Send(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	if err == nil {
		t.Fatal("Send() should time out")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send() error should wrap context.DeadlineExceeded, got %v", err)
	}
}

func TestHTTPTransport_BadURL(t *testing.T) {
	_, err := NewHTTPTransport(time.Second).Send(context.Background(), Request{Method: "GET", URL: "://nope"})
	var terr *TransportError
	if !errors.As(err, &terr) || terr.Op != "build" {
		t.Errorf("Send() with bad URL should fail in build, got %v", err)
	}
}
