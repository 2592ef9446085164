package core

import (
	"net/http"
	"strings"
	"time"
)

// RequestDescriptor is one call as seen by the Executor. The per-call
// cancellation signal is the ctx passed to Executor.Execute.
type RequestDescriptor struct {
	Path    string
	Method  string
	Headers map[string]string
	// Query entries with nil values are dropped.
	Query map[string]any
	Body  []byte
	// IncludeAuth overrides the default (include when an API key is set).
	IncludeAuth *bool
	// Timeout overrides the client default when > 0.
	Timeout time.Duration
}

type CallOptions struct {
	Timeout     time.Duration
	Headers     map[string]string
	IncludeAuth *bool
}

type CallOption func(*CallOptions)

func WithCallTimeout(timeout time.Duration) CallOption {
	return func(o *CallOptions) {
		o.Timeout = timeout
	}
}

// WithHeader overrides a header for a single call. An empty value removes
// the header, including Authorization.
func WithHeader(key string, value string) CallOption {
	return func(o *CallOptions) {
		if o.Headers == nil {
			o.Headers = map[string]string{}
		}
		o.Headers[key] = value
	}
}

func WithAuth(include bool) CallOption {
	return func(o *CallOptions) {
		o.IncludeAuth = &include
	}
}

func resolveCallOptions(options []CallOption) CallOptions {
	resolved := CallOptions{}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(&resolved)
	}
	return resolved
}

func newDescriptor(method string, path string, options []CallOption) RequestDescriptor {
	call := resolveCallOptions(options)
	return RequestDescriptor{
		Path:        path,
		Method:      method,
		Headers:     call.Headers,
		IncludeAuth: call.IncludeAuth,
		Timeout:     call.Timeout,
	}
}

func normalizeMethod(method string) string {
	method = strings.TrimSpace(strings.ToUpper(method))
	if method == "" {
		return http.MethodGet
	}
	return method
}
