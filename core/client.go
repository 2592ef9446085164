package core

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// Client issues authenticated calls to the Exolix REST API. It is immutable
// after construction and safe for concurrent use.
type Client struct {
	config   Config
	executor *Executor
	logger   Logger
}

// NewClient resolves configuration (defaults < provider < cfg) and builds a
// client. It fails when no transport was supplied.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	builder := defaultClientBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("exolix", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("exolix"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.transport == nil {
		return nil, internalError("core: transport is required; supply one with WithTransport")
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, err
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, err
	}
	resolved.BaseURL = resolved.NormalizedBaseURL()

	executor, err := NewExecutor(ExecutorConfig{
		BaseURL:        resolved.BaseURL,
		APIKey:         resolved.APIKey,
		Transport:      builder.transport,
		Clock:          builder.clock,
		DefaultSignal:  builder.defaultSignal,
		DefaultTimeout: resolved.Timeout,
		Logger:         logger,
		Metrics:        builder.metricsRecorder,
	})
	if err != nil {
		return nil, err
	}
	return &Client{config: resolved, executor: executor, logger: logger}, nil
}

// Config returns the resolved configuration.
func (c *Client) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

func (c *Client) Executor() *Executor {
	if c == nil {
		return nil
	}
	return c.executor
}

func (c *Client) ListCurrencies(ctx context.Context, req ListCurrenciesRequest, opts ...CallOption) (CurrencyPage, error) {
	if err := req.Validate(); err != nil {
		return CurrencyPage{}, err
	}
	desc := newDescriptor(http.MethodGet, "/currencies", opts)
	desc.Query = req.query()
	return call[CurrencyPage](ctx, c, desc)
}

func (c *Client) ListNetworks(ctx context.Context, req ListNetworksRequest, opts ...CallOption) (NetworkPage, error) {
	if err := req.Validate(); err != nil {
		return NetworkPage{}, err
	}
	path := "/currencies/" + url.PathEscape(strings.TrimSpace(req.Code)) + "/networks"
	return call[NetworkPage](ctx, c, newDescriptor(http.MethodGet, path, opts))
}

func (c *Client) GetRate(ctx context.Context, req RateRequest, opts ...CallOption) (Rate, error) {
	if err := req.Validate(); err != nil {
		return Rate{}, err
	}
	desc := newDescriptor(http.MethodGet, "/rate", opts)
	desc.Query = req.query()
	return call[Rate](ctx, c, desc)
}

func (c *Client) CreateTransaction(ctx context.Context, req CreateTransactionRequest, opts ...CallOption) (Transaction, error) {
	if err := req.Validate(); err != nil {
		return Transaction{}, err
	}
	body, err := req.body()
	if err != nil {
		return Transaction{}, validationError("amount", err.Error())
	}
	desc := newDescriptor(http.MethodPost, "/transactions", opts)
	desc.Body = body
	return call[Transaction](ctx, c, desc)
}

func (c *Client) GetTransaction(ctx context.Context, id string, opts ...CallOption) (Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Transaction{}, validationError("id", "transaction id is required")
	}
	return call[Transaction](ctx, c, newDescriptor(http.MethodGet, "/transactions/"+url.PathEscape(id), opts))
}

func (c *Client) ListTransactions(ctx context.Context, req ListTransactionsRequest, opts ...CallOption) (TransactionPage, error) {
	if err := req.Validate(); err != nil {
		return TransactionPage{}, err
	}
	desc := newDescriptor(http.MethodGet, "/transactions", opts)
	desc.Query = req.query()
	return call[TransactionPage](ctx, c, desc)
}

func call[T any](ctx context.Context, c *Client, desc RequestDescriptor) (T, error) {
	var zero T
	if c == nil || c.executor == nil {
		return zero, internalError("core: client is not configured")
	}
	payload, err := c.executor.Execute(ctx, desc)
	if err != nil {
		return zero, err
	}
	return DecodePayload[T](payload)
}
