package exolix

import (
	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/myshadowbank/exolix-sdk/transport"
)

type Config = core.Config

type Option = core.Option

type CallOption = core.CallOption

type Client = core.Client

type Transport = core.Transport
type TransportRequest = core.TransportRequest
type TransportResponse = core.TransportResponse
type TransactionStore = core.TransactionStore
type MetricsRecorder = core.MetricsRecorder

type ListCurrenciesRequest = core.ListCurrenciesRequest
type ListNetworksRequest = core.ListNetworksRequest
type RateRequest = core.RateRequest
type CreateTransactionRequest = core.CreateTransactionRequest
type ListTransactionsRequest = core.ListTransactionsRequest

type Currency = core.Currency
type CurrencyPage = core.CurrencyPage
type Network = core.Network
type NetworkPage = core.NetworkPage
type Rate = core.Rate
type Transaction = core.Transaction
type TransactionPage = core.TransactionPage
type TransactionStatus = core.TransactionStatus
type RateType = core.RateType
type Outcome = core.Outcome

var (
	WithTransport         = core.WithTransport
	WithClock             = core.WithClock
	WithDefaultSignal     = core.WithDefaultSignal
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithCallTimeout       = core.WithCallTimeout
	WithHeader            = core.WithHeader
	WithAuth              = core.WithAuth
	IsCancelled           = core.IsCancelled
	IsValidation          = core.IsValidation
	OutcomeOf             = core.OutcomeOf
	StatusCodeOf          = core.StatusCodeOf
	ResponseBodyOf        = core.ResponseBodyOf
	RequestURLOf          = core.RequestURLOf
	CancelReasonOf        = core.CancelReasonOf
	RedactSensitiveMap    = core.RedactSensitiveMap
	StaticConfigLoader    = core.StaticConfigLoader
	NewCfgxConfigProvider = core.NewCfgxConfigProvider
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// New builds a client that talks HTTP through transport.RESTAdapter unless
// opts supply another transport.
func New(cfg Config, opts ...Option) (*Client, error) {
	all := make([]Option, 0, len(opts)+1)
	all = append(all, core.WithTransport(transport.NewRESTAdapter(nil)))
	all = append(all, opts...)
	return core.NewClient(cfg, all...)
}
