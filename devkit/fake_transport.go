package devkit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/myshadowbank/exolix-sdk/core"
)

// TransportScript is one scripted reply. When Block is set the fake waits for
// ctx to be cancelled and returns ctx.Err(), mimicking a hung connection.
type TransportScript struct {
	StatusCode  int
	ContentType string
	Body        string
	Err         error
	Block       bool
}

// JSONScript scripts a JSON reply.
func JSONScript(status int, body string) TransportScript {
	return TransportScript{StatusCode: status, ContentType: "application/json", Body: body}
}

type FakeTransport struct {
	mu       sync.Mutex
	scripts  []TransportScript
	requests []core.TransportRequest
}

func NewFakeTransport(scripts ...TransportScript) *FakeTransport {
	return &FakeTransport{
		scripts: append([]TransportScript(nil), scripts...),
	}
}

// Do replays scripts in order and repeats the last one once they run out.
func (f *FakeTransport) Do(ctx context.Context, req core.TransportRequest) (*core.TransportResponse, error) {
	if f == nil {
		return nil, fmt.Errorf("devkit: fake transport is nil")
	}
	f.mu.Lock()
	f.requests = append(f.requests, cloneTransportRequest(req))
	index := len(f.requests) - 1
	script := TransportScript{StatusCode: http.StatusOK, ContentType: "application/json", Body: "{}"}
	if index < len(f.scripts) {
		script = f.scripts[index]
	} else if len(f.scripts) > 0 {
		script = f.scripts[len(f.scripts)-1]
	}
	f.mu.Unlock()

	if script.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if script.Err != nil {
		return nil, script.Err
	}
	header := http.Header{}
	if strings.TrimSpace(script.ContentType) != "" {
		header.Set("Content-Type", script.ContentType)
	}
	status := script.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return &core.TransportResponse{
		StatusCode: status,
		Status:     fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(script.Body)),
	}, nil
}

func (f *FakeTransport) Requests() []core.TransportRequest {
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]core.TransportRequest, 0, len(f.requests))
	for _, item := range f.requests {
		out = append(out, cloneTransportRequest(item))
	}
	return out
}

func cloneTransportRequest(in core.TransportRequest) core.TransportRequest {
	out := core.TransportRequest{
		Method:  in.Method,
		URL:     in.URL,
		Headers: map[string]string{},
		Body:    append([]byte(nil), in.Body...),
	}
	for key, value := range in.Headers {
		out.Headers[key] = value
	}
	return out
}

var _ core.Transport = (*FakeTransport)(nil)
