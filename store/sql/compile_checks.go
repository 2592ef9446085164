package sqlstore

import "github.com/myshadowbank/exolix-sdk/core"

var (
	_ core.TransactionStore = (*TransactionStore)(nil)
	_ core.TransactionStore = (*CachedTransactionStore)(nil)
)
