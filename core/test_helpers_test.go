package core

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	goerrors "github.com/goliatone/go-errors"
)

type countingTimer struct {
	inner *clock.Timer
	stops atomic.Int32
}

func (t *countingTimer) Stop() bool {
	t.stops.Add(1)
	return t.inner.Stop()
}

// countingClock records every timer it hands out so tests can assert
// allocation and release counts.
type countingClock struct {
	mock   *clock.Mock
	mu     sync.Mutex
	timers []*countingTimer
}

func newCountingClock() *countingClock {
	return &countingClock{mock: clock.NewMock()}
}

func (c *countingClock) AfterFunc(d time.Duration, f func()) Timer {
	timer := &countingTimer{inner: c.mock.AfterFunc(d, f)}
	c.mu.Lock()
	c.timers = append(c.timers, timer)
	c.mu.Unlock()
	return timer
}

func (c *countingClock) Allocated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *countingClock) Releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, timer := range c.timers {
		total += int(timer.stops.Load())
	}
	return total
}

type recordingTransport struct {
	mu       sync.Mutex
	requests []TransportRequest
	handler  func(ctx context.Context, req TransportRequest) (*TransportResponse, error)
}

func (t *recordingTransport) Do(ctx context.Context, req TransportRequest) (*TransportResponse, error) {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	handler := t.handler
	t.mu.Unlock()
	if handler == nil {
		return jsonResponse(http.StatusOK, `{}`), nil
	}
	return handler(ctx, req)
}

func (t *recordingTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

func (t *recordingTransport) Last() TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return TransportRequest{}
	}
	return t.requests[len(t.requests)-1]
}

func respondWith(res *TransportResponse, err error) *recordingTransport {
	return &recordingTransport{
		handler: func(context.Context, TransportRequest) (*TransportResponse, error) {
			return res, err
		},
	}
}

func response(status int, contentType string, body string) *TransportResponse {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return &TransportResponse{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func jsonResponse(status int, body string) *TransportResponse {
	return response(status, "application/json; charset=utf-8", body)
}

func newTestClient(t *testing.T, transport Transport, cfg Config, opts ...Option) *Client {
	t.Helper()
	all := append([]Option{WithTransport(transport)}, opts...)
	client, err := NewClient(cfg, all...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func requireRich(t *testing.T, err error) *goerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	return rich
}

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected context to be cancelled")
	}
}
