package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

type ExecutorConfig struct {
	BaseURL              string
	APIKey               string
	Transport            Transport
	Clock                Clock
	DefaultSignal        context.Context
	DefaultTimeout       time.Duration
	MaxResponseBodyBytes int64
	Logger               Logger
	Metrics              MetricsRecorder
}

// Executor performs one HTTP call per Execute and classifies the outcome. It
// holds no per-call state and is safe for concurrent use.
type Executor struct {
	baseURL        string
	apiKey         string
	transport      Transport
	clock          Clock
	defaultSignal  context.Context
	defaultTimeout time.Duration
	bodyLimit      int64
	logger         Logger
	metrics        MetricsRecorder
}

func NewExecutor(cfg ExecutorConfig) (*Executor, error) {
	if cfg.Transport == nil {
		return nil, internalError("core: transport is required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock(nil)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	limit := cfg.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	return &Executor{
		baseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:         strings.TrimSpace(cfg.APIKey),
		transport:      cfg.Transport,
		clock:          clock,
		defaultSignal:  cfg.DefaultSignal,
		defaultTimeout: cfg.DefaultTimeout,
		bodyLimit:      limit,
		logger:         glog.Ensure(cfg.Logger),
		metrics:        metrics,
	}, nil
}

// Execute dispatches desc and returns the payload or a classified error.
// ctx is the per-call cancellation signal.
func (e *Executor) Execute(ctx context.Context, desc RequestDescriptor) (payload Payload, err error) {
	if e == nil || e.transport == nil {
		return Payload{}, internalError("core: executor is not configured")
	}
	method := normalizeMethod(desc.Method)
	target := BuildURL(e.baseURL, desc.Path, desc.Query)
	headers := BuildHeaders(e.apiKey, desc.IncludeAuth, desc.Headers)

	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}
	signal := ComposeSignal(e.clock, timeout, ctx, e.defaultSignal)
	defer signal.Release()

	startedAt := time.Now()
	defer func() {
		e.observe(ctx, startedAt, method, desc.Path, target, headers, payload, err)
	}()

	return e.dispatch(signal.Context(), TransportRequest{
		Method:  method,
		URL:     target,
		Headers: headers,
		Body:    desc.Body,
	})
}

func (e *Executor) dispatch(ctx context.Context, req TransportRequest) (Payload, error) {
	res, err := e.transport.Do(ctx, req)
	if err != nil {
		if res != nil {
			closeBody(res)
		}
		if cancelled, cause := cancellation(ctx); cancelled {
			return Payload{}, cancelledError(cause, req.URL)
		}
		return Payload{}, transportFailure(err, req.URL)
	}
	if res == nil {
		return Payload{}, transportFailure(fmt.Errorf("transport returned no response"), req.URL)
	}
	defer closeBody(res)

	raw, err := e.readBody(res)
	if err != nil {
		if cancelled, cause := cancellation(ctx); cancelled {
			return Payload{}, cancelledError(cause, req.URL)
		}
		if errors.Is(err, errBodyTooLarge) {
			return Payload{}, oversizedBodyError(err, res, req.URL)
		}
		return Payload{}, transportFailure(err, req.URL)
	}

	header := res.Header
	if header == nil {
		header = http.Header{}
	}
	success := res.StatusCode >= 200 && res.StatusCode < 300
	body, parseErr := parseBody(header, raw)
	if parseErr != nil {
		if success {
			return Payload{}, decodeError(parseErr, res.StatusCode, req.URL, string(raw))
		}
		body = string(raw)
	}
	if !success {
		text := statusText(res.StatusCode, res.Status)
		return Payload{}, remoteError(remoteErrorMessage(body, text), res.StatusCode, text, req.URL, body)
	}
	return Payload{
		StatusCode: res.StatusCode,
		URL:        req.URL,
		Header:     header,
		Raw:        raw,
		Data:       body,
	}, nil
}

func (e *Executor) readBody(res *TransportResponse) ([]byte, error) {
	if res.Body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(res.Body, e.bodyLimit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > e.bodyLimit {
		return nil, fmt.Errorf("%w of %d bytes", errBodyTooLarge, e.bodyLimit)
	}
	return raw, nil
}

var errBodyTooLarge = errors.New("response body exceeds limit")

// oversizedBodyError keeps the response status: a 2xx becomes a decode
// failure, anything else a remote error without a body.
func oversizedBodyError(err error, res *TransportResponse, url string) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return decodeError(err, res.StatusCode, url, nil)
	}
	text := statusText(res.StatusCode, res.Status)
	return remoteError(text, res.StatusCode, text, url, nil)
}

// cancellation reports whether the effective signal fired and returns its
// cause. Transport errors wrapping context.DeadlineExceeded on a live signal
// (http.Client.Timeout, for one) are transport failures.
func cancellation(ctx context.Context) (bool, error) {
	if ctx.Err() != nil {
		return true, context.Cause(ctx)
	}
	return false, nil
}

func closeBody(res *TransportResponse) {
	if res == nil || res.Body == nil {
		return
	}
	_ = res.Body.Close()
}
