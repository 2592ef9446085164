package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/myshadowbank/exolix-sdk/core"
)

type stubSource struct {
	mu              sync.Mutex
	currencyCalls   int
	networkCalls    int
	rateCalls       int
	transactionHits int
	currencyErr     error
}

func (s *stubSource) ListCurrencies(_ context.Context, req core.ListCurrenciesRequest, _ ...core.CallOption) (core.CurrencyPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencyCalls++
	if s.currencyErr != nil {
		return core.CurrencyPage{}, s.currencyErr
	}
	return core.CurrencyPage{
		Data:  []core.Currency{{Code: "BTC", Name: "Bitcoin", Networks: []core.Network{{Network: "BTC"}}}},
		Count: 1,
	}, nil
}

func (s *stubSource) ListNetworks(_ context.Context, req core.ListNetworksRequest, _ ...core.CallOption) (core.NetworkPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.networkCalls++
	return core.NetworkPage{Data: []core.Network{{Network: req.Code}}, Count: 1}, nil
}

func (s *stubSource) GetRate(context.Context, core.RateRequest, ...core.CallOption) (core.Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rateCalls++
	return core.Rate{}, nil
}

func (s *stubSource) GetTransaction(_ context.Context, id string, _ ...core.CallOption) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactionHits++
	return core.Transaction{ID: id}, nil
}

func (s *stubSource) ListTransactions(context.Context, core.ListTransactionsRequest, ...core.CallOption) (core.TransactionPage, error) {
	return core.TransactionPage{}, nil
}

func TestCachedCatalog_ListCurrencies_MissFetchThenHit(t *testing.T) {
	source := &stubSource{}
	catalog := newTestCatalog(t, source)
	req := core.ListCurrenciesRequest{Search: "btc", WithNetworks: true}

	first, err := catalog.ListCurrencies(context.Background(), req)
	if err != nil {
		t.Fatalf("first list: %v", err)
	}
	first.Data[0].Networks[0].Network = "mutated"

	second, err := catalog.ListCurrencies(context.Background(), req)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if source.currencyCalls != 1 {
		t.Fatalf("expected one source call, got %d", source.currencyCalls)
	}
	if second.Data[0].Networks[0].Network != "BTC" {
		t.Fatalf("expected cached page to be isolated from caller mutation")
	}

	if _, err := catalog.ListCurrencies(context.Background(), core.ListCurrenciesRequest{Search: "eth"}); err != nil {
		t.Fatalf("other listing: %v", err)
	}
	if source.currencyCalls != 2 {
		t.Fatalf("expected a different query to miss, got %d calls", source.currencyCalls)
	}
}

func TestCachedCatalog_ListCurrencies_ErrorsAreNotCached(t *testing.T) {
	upstream := errors.New("upstream down")
	source := &stubSource{currencyErr: upstream}
	catalog := newTestCatalog(t, source)

	if _, err := catalog.ListCurrencies(context.Background(), core.ListCurrenciesRequest{}); !errors.Is(err, upstream) {
		t.Fatalf("expected source error, got %v", err)
	}
	source.mu.Lock()
	source.currencyErr = nil
	source.mu.Unlock()

	page, err := catalog.ListCurrencies(context.Background(), core.ListCurrenciesRequest{})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if page.Count != 1 || source.currencyCalls != 2 {
		t.Fatalf("expected refetch after failure, calls=%d", source.currencyCalls)
	}
}

func TestCachedCatalog_ListNetworks_InvalidateForcesRefetch(t *testing.T) {
	source := &stubSource{}
	catalog := newTestCatalog(t, source)
	req := core.ListNetworksRequest{Code: "USDT"}

	for i := 0; i < 2; i++ {
		if _, err := catalog.ListNetworks(context.Background(), req); err != nil {
			t.Fatalf("list networks: %v", err)
		}
	}
	if source.networkCalls != 1 {
		t.Fatalf("expected one source call, got %d", source.networkCalls)
	}

	key, err := NetworksCacheKey("USDT")
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if err := catalog.Invalidate(context.Background(), key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := catalog.ListNetworks(context.Background(), req); err != nil {
		t.Fatalf("list networks after invalidate: %v", err)
	}
	if source.networkCalls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d", source.networkCalls)
	}
}

func TestCachedCatalog_ValidationSkipsSource(t *testing.T) {
	source := &stubSource{}
	catalog := newTestCatalog(t, source)

	if _, err := catalog.ListNetworks(context.Background(), core.ListNetworksRequest{Code: " "}); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := catalog.ListCurrencies(context.Background(), core.ListCurrenciesRequest{Page: -1}); err == nil {
		t.Fatalf("expected validation error")
	}
	if source.networkCalls != 0 || source.currencyCalls != 0 {
		t.Fatalf("expected no source calls")
	}
}

func TestCachedCatalog_PassesThroughNonCatalogReads(t *testing.T) {
	source := &stubSource{}
	catalog := newTestCatalog(t, source)

	for i := 0; i < 2; i++ {
		if _, err := catalog.GetTransaction(context.Background(), "ex_1"); err != nil {
			t.Fatalf("get transaction: %v", err)
		}
		if _, err := catalog.GetRate(context.Background(), core.RateRequest{}); err != nil {
			t.Fatalf("get rate: %v", err)
		}
	}
	if source.transactionHits != 2 || source.rateCalls != 2 {
		t.Fatalf("expected uncached reads, tx=%d rate=%d", source.transactionHits, source.rateCalls)
	}
}

func TestCacheKeys(t *testing.T) {
	got := CurrenciesCacheKey(core.ListCurrenciesRequest{Size: 10, Page: 2, Search: "usd t", All: true})
	want := "exolix::catalog::v1::currencies::all=true&page=2&search=usd+t&size=10"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := CurrenciesCacheKey(core.ListCurrenciesRequest{}); got != "exolix::catalog::v1::currencies::" {
		t.Fatalf("unexpected empty listing key %q", got)
	}
	networks, err := NetworksCacheKey(" USD T ")
	if err != nil {
		t.Fatalf("networks key: %v", err)
	}
	if networks != "exolix::catalog::v1::networks::USD%20T" {
		t.Fatalf("unexpected networks key %q", networks)
	}
	if _, err := NetworksCacheKey(""); err == nil {
		t.Fatalf("expected empty code error")
	}
}

func TestInvalidate_RejectsForeignKeys(t *testing.T) {
	catalog := newTestCatalog(t, &stubSource{})
	if err := catalog.Invalidate(context.Background(), "exolix::transaction::v1::ex_1"); err == nil {
		t.Fatalf("expected foreign key rejection")
	}
}

func TestNewCachedCatalog_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedCatalog(nil, newTestCacheService(t)); err == nil {
		t.Fatalf("expected missing source error")
	}
	if _, err := NewCachedCatalog(&stubSource{}, nil); err == nil {
		t.Fatalf("expected missing cache error")
	}
}

func newTestCatalog(t *testing.T, source Source) *CachedCatalog {
	t.Helper()
	catalog, err := NewCachedCatalog(source, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached catalog: %v", err)
	}
	return catalog
}

func newTestCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
