package gocommand

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	exolixcommand "github.com/myshadowbank/exolix-sdk/command"
	"github.com/myshadowbank/exolix-sdk/core"
	exolixquery "github.com/myshadowbank/exolix-sdk/query"
)

// ValidateMessageContract checks that msg has a non-empty Type() and, when it
// implements Validate(), that it validates.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(cmd)
}

func (a *RegistryAdapter) RegisterQuery(qry any) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return a.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeCommandFunc[T any](handler command.CommandFunc[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(handler, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func SubscribeQueryFunc[T any, R any](qry command.QueryFunc[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	subscription := SubscribeCommand(cmd, runnerOpts...)
	if err := adapter.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if adapter == nil || adapter.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	subscription := SubscribeQuery(qry, runnerOpts...)
	if err := adapter.RegisterQuery(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// Handlers lists the exolix handlers to put on the command bus. Nil entries
// are skipped.
type Handlers struct {
	CreateTransaction  command.Commander[exolixcommand.CreateTransactionMessage]
	RefreshTransaction command.Commander[exolixcommand.RefreshTransactionMessage]
	WatchTransaction   command.Commander[exolixcommand.WatchTransactionMessage]

	ListCurrencies         command.Querier[exolixquery.ListCurrenciesMessage, core.CurrencyPage]
	ListNetworks           command.Querier[exolixquery.ListNetworksMessage, core.NetworkPage]
	GetRate                command.Querier[exolixquery.GetRateMessage, core.Rate]
	GetTransaction         command.Querier[exolixquery.GetTransactionMessage, core.Transaction]
	ListTransactions       command.Querier[exolixquery.ListTransactionsMessage, core.TransactionPage]
	ListStoredTransactions command.Querier[exolixquery.ListStoredTransactionsMessage, []core.Transaction]
}

type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterHandlers registers and subscribes every configured handler. On
// failure the subscriptions made so far are released.
func RegisterHandlers(adapter *RegistryAdapter, handlers Handlers, runnerOpts ...runner.Option) (Subscriptions, error) {
	var subscriptions Subscriptions
	steps := []func() (commanddispatcher.Subscription, error){
		commandStep(adapter, handlers.CreateTransaction, runnerOpts),
		commandStep(adapter, handlers.RefreshTransaction, runnerOpts),
		commandStep(adapter, handlers.WatchTransaction, runnerOpts),
		queryStep(adapter, handlers.ListCurrencies, runnerOpts),
		queryStep(adapter, handlers.ListNetworks, runnerOpts),
		queryStep(adapter, handlers.GetRate, runnerOpts),
		queryStep(adapter, handlers.GetTransaction, runnerOpts),
		queryStep(adapter, handlers.ListTransactions, runnerOpts),
		queryStep(adapter, handlers.ListStoredTransactions, runnerOpts),
	}
	for _, step := range steps {
		subscription, err := step()
		if err != nil {
			subscriptions.Unsubscribe()
			return nil, err
		}
		if subscription != nil {
			subscriptions = append(subscriptions, subscription)
		}
	}
	return subscriptions, nil
}

func commandStep[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts []runner.Option,
) func() (commanddispatcher.Subscription, error) {
	return func() (commanddispatcher.Subscription, error) {
		if isNilHandler(cmd) {
			return nil, nil
		}
		return RegisterAndSubscribe(adapter, cmd, runnerOpts...)
	}
}

func queryStep[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts []runner.Option,
) func() (commanddispatcher.Subscription, error) {
	return func() (commanddispatcher.Subscription, error) {
		if isNilHandler(qry) {
			return nil, nil
		}
		return RegisterAndSubscribeQuery(adapter, qry, runnerOpts...)
	}
}

func isNilHandler(handler any) bool {
	if handler == nil {
		return true
	}
	value := reflect.ValueOf(handler)
	return value.Kind() == reflect.Pointer && value.IsNil()
}
