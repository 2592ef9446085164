package query

import (
	"context"

	"github.com/myshadowbank/exolix-sdk/core"
)

// ExchangeReader is the read side of the Exolix client.
type ExchangeReader interface {
	ListCurrencies(ctx context.Context, req core.ListCurrenciesRequest, opts ...core.CallOption) (core.CurrencyPage, error)
	ListNetworks(ctx context.Context, req core.ListNetworksRequest, opts ...core.CallOption) (core.NetworkPage, error)
	GetRate(ctx context.Context, req core.RateRequest, opts ...core.CallOption) (core.Rate, error)
	GetTransaction(ctx context.Context, id string, opts ...core.CallOption) (core.Transaction, error)
	ListTransactions(ctx context.Context, req core.ListTransactionsRequest, opts ...core.CallOption) (core.TransactionPage, error)
}

type ListCurrenciesQuery struct {
	reader ExchangeReader
}

func NewListCurrenciesQuery(reader ExchangeReader) *ListCurrenciesQuery {
	return &ListCurrenciesQuery{reader: reader}
}

func (q *ListCurrenciesQuery) Query(ctx context.Context, msg ListCurrenciesMessage) (core.CurrencyPage, error) {
	if q == nil || q.reader == nil {
		return core.CurrencyPage{}, queryDependencyError("query: exchange reader is required")
	}
	return q.reader.ListCurrencies(ctx, msg.Request)
}

type ListNetworksQuery struct {
	reader ExchangeReader
}

func NewListNetworksQuery(reader ExchangeReader) *ListNetworksQuery {
	return &ListNetworksQuery{reader: reader}
}

func (q *ListNetworksQuery) Query(ctx context.Context, msg ListNetworksMessage) (core.NetworkPage, error) {
	if q == nil || q.reader == nil {
		return core.NetworkPage{}, queryDependencyError("query: exchange reader is required")
	}
	return q.reader.ListNetworks(ctx, msg.Request)
}

type GetRateQuery struct {
	reader ExchangeReader
}

func NewGetRateQuery(reader ExchangeReader) *GetRateQuery {
	return &GetRateQuery{reader: reader}
}

func (q *GetRateQuery) Query(ctx context.Context, msg GetRateMessage) (core.Rate, error) {
	if q == nil || q.reader == nil {
		return core.Rate{}, queryDependencyError("query: exchange reader is required")
	}
	return q.reader.GetRate(ctx, msg.Request)
}

type GetTransactionQuery struct {
	reader ExchangeReader
}

func NewGetTransactionQuery(reader ExchangeReader) *GetTransactionQuery {
	return &GetTransactionQuery{reader: reader}
}

func (q *GetTransactionQuery) Query(ctx context.Context, msg GetTransactionMessage) (core.Transaction, error) {
	if q == nil || q.reader == nil {
		return core.Transaction{}, queryDependencyError("query: exchange reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return q.reader.GetTransaction(ctx, msg.TransactionID)
}

type ListTransactionsQuery struct {
	reader ExchangeReader
}

func NewListTransactionsQuery(reader ExchangeReader) *ListTransactionsQuery {
	return &ListTransactionsQuery{reader: reader}
}

func (q *ListTransactionsQuery) Query(ctx context.Context, msg ListTransactionsMessage) (core.TransactionPage, error) {
	if q == nil || q.reader == nil {
		return core.TransactionPage{}, queryDependencyError("query: exchange reader is required")
	}
	return q.reader.ListTransactions(ctx, msg.Request)
}

type ListStoredTransactionsQuery struct {
	store core.TransactionStore
}

func NewListStoredTransactionsQuery(store core.TransactionStore) *ListStoredTransactionsQuery {
	return &ListStoredTransactionsQuery{store: store}
}

func (q *ListStoredTransactionsQuery) Query(ctx context.Context, msg ListStoredTransactionsMessage) ([]core.Transaction, error) {
	if q == nil || q.store == nil {
		return nil, queryDependencyError("query: transaction store is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	limit := msg.Limit
	if limit == 0 {
		limit = defaultStoredTransactionLimit
	}
	return q.store.ListByStatus(ctx, msg.Statuses, limit)
}
