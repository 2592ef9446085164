package query

import (
	"strings"

	"github.com/myshadowbank/exolix-sdk/core"
)

const (
	TypeListCurrencies         = "exolix.query.currencies.list"
	TypeListNetworks           = "exolix.query.networks.list"
	TypeGetRate                = "exolix.query.rate.get"
	TypeGetTransaction         = "exolix.query.transaction.get"
	TypeListTransactions       = "exolix.query.transactions.list"
	TypeListStoredTransactions = "exolix.query.transactions.stored"
)

const defaultStoredTransactionLimit = 100

type ListCurrenciesMessage struct {
	Request core.ListCurrenciesRequest
}

func (ListCurrenciesMessage) Type() string { return TypeListCurrencies }

func (m ListCurrenciesMessage) Validate() error { return m.Request.Validate() }

type ListNetworksMessage struct {
	Request core.ListNetworksRequest
}

func (ListNetworksMessage) Type() string { return TypeListNetworks }

func (m ListNetworksMessage) Validate() error { return m.Request.Validate() }

type GetRateMessage struct {
	Request core.RateRequest
}

func (GetRateMessage) Type() string { return TypeGetRate }

func (m GetRateMessage) Validate() error { return m.Request.Validate() }

type GetTransactionMessage struct {
	TransactionID string
}

func (GetTransactionMessage) Type() string { return TypeGetTransaction }

func (m GetTransactionMessage) Validate() error {
	if strings.TrimSpace(m.TransactionID) == "" {
		return queryValidationError("transaction_id", "transaction id is required")
	}
	return nil
}

type ListTransactionsMessage struct {
	Request core.ListTransactionsRequest
}

func (ListTransactionsMessage) Type() string { return TypeListTransactions }

func (m ListTransactionsMessage) Validate() error { return m.Request.Validate() }

// ListStoredTransactionsMessage reads locally persisted snapshots. An empty
// Statuses matches every status.
type ListStoredTransactionsMessage struct {
	Statuses []core.TransactionStatus
	Limit    int
}

func (ListStoredTransactionsMessage) Type() string { return TypeListStoredTransactions }

func (m ListStoredTransactionsMessage) Validate() error {
	if m.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	return nil
}
