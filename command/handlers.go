package command

import (
	"context"
	"time"

	gocmd "github.com/goliatone/go-command"
	"github.com/myshadowbank/exolix-sdk/core"
)

type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req core.CreateTransactionRequest, opts ...core.CallOption) (core.Transaction, error)
}

// TransactionTracker refreshes stored snapshots and schedules polling.
type TransactionTracker interface {
	Refresh(ctx context.Context, transactionID string) (core.Transaction, error)
	Watch(ctx context.Context, transactionID string, delay time.Duration) error
}

type CreateTransactionCommand struct {
	creator TransactionCreator
	store   core.TransactionStore
}

// NewCreateTransactionCommand builds the command. store may be nil, in which
// case created transactions are not persisted.
func NewCreateTransactionCommand(creator TransactionCreator, store core.TransactionStore) *CreateTransactionCommand {
	return &CreateTransactionCommand{creator: creator, store: store}
}

func (c *CreateTransactionCommand) Execute(ctx context.Context, msg CreateTransactionMessage) error {
	if c == nil || c.creator == nil {
		return commandDependencyError("command: transaction creator is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.creator.CreateTransaction(ctx, msg.Request)
	if err != nil {
		return err
	}
	if c.store != nil {
		if out, err = c.store.Upsert(ctx, out); err != nil {
			return err
		}
	}
	storeResult(ctx, out)
	return nil
}

type RefreshTransactionCommand struct {
	tracker TransactionTracker
}

func NewRefreshTransactionCommand(tracker TransactionTracker) *RefreshTransactionCommand {
	return &RefreshTransactionCommand{tracker: tracker}
}

func (c *RefreshTransactionCommand) Execute(ctx context.Context, msg RefreshTransactionMessage) error {
	if c == nil || c.tracker == nil {
		return commandDependencyError("command: transaction tracker is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := c.tracker.Refresh(ctx, msg.TransactionID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type WatchTransactionCommand struct {
	tracker TransactionTracker
}

func NewWatchTransactionCommand(tracker TransactionTracker) *WatchTransactionCommand {
	return &WatchTransactionCommand{tracker: tracker}
}

func (c *WatchTransactionCommand) Execute(ctx context.Context, msg WatchTransactionMessage) error {
	if c == nil || c.tracker == nil {
		return commandDependencyError("command: transaction tracker is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.tracker.Watch(ctx, msg.TransactionID, msg.Delay)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
