package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/myshadowbank/exolix-sdk/core"
)

var (
	_ gocmd.Querier[ListCurrenciesMessage, core.CurrencyPage]          = (*ListCurrenciesQuery)(nil)
	_ gocmd.Querier[ListNetworksMessage, core.NetworkPage]             = (*ListNetworksQuery)(nil)
	_ gocmd.Querier[GetRateMessage, core.Rate]                         = (*GetRateQuery)(nil)
	_ gocmd.Querier[GetTransactionMessage, core.Transaction]           = (*GetTransactionQuery)(nil)
	_ gocmd.Querier[ListTransactionsMessage, core.TransactionPage]     = (*ListTransactionsQuery)(nil)
	_ gocmd.Querier[ListStoredTransactionsMessage, []core.Transaction] = (*ListStoredTransactionsQuery)(nil)
)
