package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/myshadowbank/exolix-sdk/core"
)

const KindREST = "rest"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RESTAdapter is the default core.Transport backed by net/http. It does not
// read or buffer the response body; the executor owns that.
type RESTAdapter struct {
	Client         HTTPDoer
	DefaultHeaders map[string]string
	UserAgent      string
}

// NewRESTAdapter wraps client. A nil client becomes an http.Client without
// Timeout; deadlines come from the executor's effective signal.
func NewRESTAdapter(client HTTPDoer) *RESTAdapter {
	if client == nil {
		client = &http.Client{}
	}
	return &RESTAdapter{
		Client:         client,
		DefaultHeaders: map[string]string{},
	}
}

func (*RESTAdapter) Kind() string {
	return KindREST
}

func (a *RESTAdapter) Do(ctx context.Context, req core.TransportRequest) (*core.TransportResponse, error) {
	if a == nil || a.Client == nil {
		return nil, transportError(
			"transport: rest adapter requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			map[string]any{"adapter": KindREST},
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.TrimSpace(strings.ToUpper(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := strings.TrimSpace(req.URL)
	parsedURL, err := url.Parse(target)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: invalid request url",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "url": target},
		)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, transportError(
			"transport: request url must be absolute",
			goerrors.CategoryBadInput,
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "url": target},
		)
	}

	var body *bytes.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := newHTTPRequest(ctx, method, parsedURL.String(), body)
	if err != nil {
		return nil, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			map[string]any{"adapter": KindREST, "method": method, "url": parsedURL.String()},
		)
	}
	for key, value := range a.DefaultHeaders {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if userAgent := strings.TrimSpace(a.UserAgent); userAgent != "" {
		httpReq.Header.Set("User-Agent", userAgent)
	}
	for key, value := range req.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		httpReq.Header.Set(strings.TrimSpace(key), value)
	}

	// Network and context errors are returned unwrapped; the executor
	// classifies them against its effective signal.
	httpRes, err := a.Client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return &core.TransportResponse{
		StatusCode: httpRes.StatusCode,
		Status:     httpRes.Status,
		Header:     httpRes.Header,
		Body:       httpRes.Body,
	}, nil
}

func newHTTPRequest(ctx context.Context, method string, target string, body *bytes.Reader) (*http.Request, error) {
	if body == nil {
		return http.NewRequestWithContext(ctx, method, target, http.NoBody)
	}
	return http.NewRequestWithContext(ctx, method, target, body)
}

var _ core.Transport = (*RESTAdapter)(nil)
