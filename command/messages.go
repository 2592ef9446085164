package command

import (
	"strings"
	"time"

	"github.com/myshadowbank/exolix-sdk/core"
)

const (
	TypeCreateTransaction  = "exolix.command.transaction.create"
	TypeRefreshTransaction = "exolix.command.transaction.refresh"
	TypeWatchTransaction   = "exolix.command.transaction.watch"
)

type CreateTransactionMessage struct {
	Request core.CreateTransactionRequest
}

func (CreateTransactionMessage) Type() string { return TypeCreateTransaction }

func (m CreateTransactionMessage) Validate() error {
	return m.Request.Validate()
}

type RefreshTransactionMessage struct {
	TransactionID string
}

func (RefreshTransactionMessage) Type() string { return TypeRefreshTransaction }

func (m RefreshTransactionMessage) Validate() error {
	if strings.TrimSpace(m.TransactionID) == "" {
		return commandValidationError("transaction_id", "transaction id is required")
	}
	return nil
}

type WatchTransactionMessage struct {
	TransactionID string
	Delay         time.Duration
}

func (WatchTransactionMessage) Type() string { return TypeWatchTransaction }

func (m WatchTransactionMessage) Validate() error {
	if strings.TrimSpace(m.TransactionID) == "" {
		return commandValidationError("transaction_id", "transaction id is required")
	}
	if m.Delay < 0 {
		return commandValidationError("delay", "delay must be >= 0")
	}
	return nil
}
