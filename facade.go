package exolix

import (
	"fmt"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/myshadowbank/exolix-sdk/adapters/gocommand"
	"github.com/myshadowbank/exolix-sdk/catalog"
	exolixcommand "github.com/myshadowbank/exolix-sdk/command"
	"github.com/myshadowbank/exolix-sdk/core"
	exolixquery "github.com/myshadowbank/exolix-sdk/query"
	"github.com/myshadowbank/exolix-sdk/tracking"
)

type Commands struct {
	CreateTransaction  *exolixcommand.CreateTransactionCommand
	RefreshTransaction *exolixcommand.RefreshTransactionCommand
	WatchTransaction   *exolixcommand.WatchTransactionCommand
}

type Queries struct {
	ListCurrencies         *exolixquery.ListCurrenciesQuery
	ListNetworks           *exolixquery.ListNetworksQuery
	GetRate                *exolixquery.GetRateQuery
	GetTransaction         *exolixquery.GetTransactionQuery
	ListTransactions       *exolixquery.ListTransactionsQuery
	ListStoredTransactions *exolixquery.ListStoredTransactionsQuery
}

// Facade exposes the client as command and query handlers. Ledger-backed
// handlers are only built when a transaction store is configured, and the
// tracking commands only when a tracker can be built.
type Facade struct {
	client   *core.Client
	reader   exolixquery.ExchangeReader
	tracker  *tracking.Tracker
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	ledger       core.TransactionStore
	tracker      *tracking.Tracker
	enqueuer     core.JobEnqueuer
	catalogCache repositorycache.CacheService
}

// WithLedger persists created and refreshed transactions to store.
func WithLedger(store core.TransactionStore) FacadeOption {
	return func(options *facadeOptions) {
		options.ledger = store
	}
}

// WithTracker uses tracker for the refresh and watch commands.
func WithTracker(tracker *tracking.Tracker) FacadeOption {
	return func(options *facadeOptions) {
		options.tracker = tracker
	}
}

// WithJobEnqueuer lets the default tracker schedule watch jobs.
func WithJobEnqueuer(enqueuer core.JobEnqueuer) FacadeOption {
	return func(options *facadeOptions) {
		options.enqueuer = enqueuer
	}
}

// WithCatalogCache serves currency and network listings through a cache.
func WithCatalogCache(cacheService repositorycache.CacheService) FacadeOption {
	return func(options *facadeOptions) {
		options.catalogCache = cacheService
	}
}

func NewFacade(client *core.Client, opts ...FacadeOption) (*Facade, error) {
	if client == nil {
		return nil, fmt.Errorf("exolix: client is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	var reader exolixquery.ExchangeReader = client
	if cfg.catalogCache != nil {
		cached, err := catalog.NewCachedCatalog(client, cfg.catalogCache)
		if err != nil {
			return nil, err
		}
		reader = cached
	}

	tracker := cfg.tracker
	if tracker == nil && (cfg.ledger != nil || cfg.enqueuer != nil) {
		built, err := tracking.NewTracker(client,
			tracking.WithStore(cfg.ledger),
			tracking.WithEnqueuer(cfg.enqueuer),
		)
		if err != nil {
			return nil, err
		}
		tracker = built
	}

	facade := &Facade{
		client:  client,
		reader:  reader,
		tracker: tracker,
	}
	facade.commands = Commands{
		CreateTransaction: exolixcommand.NewCreateTransactionCommand(client, cfg.ledger),
	}
	if tracker != nil {
		facade.commands.RefreshTransaction = exolixcommand.NewRefreshTransactionCommand(tracker)
		facade.commands.WatchTransaction = exolixcommand.NewWatchTransactionCommand(tracker)
	}
	facade.queries = Queries{
		ListCurrencies:   exolixquery.NewListCurrenciesQuery(reader),
		ListNetworks:     exolixquery.NewListNetworksQuery(reader),
		GetRate:          exolixquery.NewGetRateQuery(reader),
		GetTransaction:   exolixquery.NewGetTransactionQuery(reader),
		ListTransactions: exolixquery.NewListTransactionsQuery(reader),
	}
	if cfg.ledger != nil {
		facade.queries.ListStoredTransactions = exolixquery.NewListStoredTransactionsQuery(cfg.ledger)
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Client() *core.Client {
	if f == nil {
		return nil
	}
	return f.client
}

func (f *Facade) Tracker() *tracking.Tracker {
	if f == nil {
		return nil
	}
	return f.tracker
}

// BusHandlers returns the configured handlers in the shape the go-command
// adapter registers.
func (f *Facade) BusHandlers() gocommand.Handlers {
	if f == nil {
		return gocommand.Handlers{}
	}
	return gocommand.Handlers{
		CreateTransaction:      f.commands.CreateTransaction,
		RefreshTransaction:     f.commands.RefreshTransaction,
		WatchTransaction:       f.commands.WatchTransaction,
		ListCurrencies:         f.queries.ListCurrencies,
		ListNetworks:           f.queries.ListNetworks,
		GetRate:                f.queries.GetRate,
		GetTransaction:         f.queries.GetTransaction,
		ListTransactions:       f.queries.ListTransactions,
		ListStoredTransactions: f.queries.ListStoredTransactions,
	}
}
