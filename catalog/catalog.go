package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/myshadowbank/exolix-sdk/core"
)

const cacheKeyPrefix = "exolix::catalog::v1"

const (
	KindCurrencies = "currencies"
	KindNetworks   = "networks"
)

// Source is the read side of the Exolix client.
type Source interface {
	ListCurrencies(ctx context.Context, req core.ListCurrenciesRequest, opts ...core.CallOption) (core.CurrencyPage, error)
	ListNetworks(ctx context.Context, req core.ListNetworksRequest, opts ...core.CallOption) (core.NetworkPage, error)
	GetRate(ctx context.Context, req core.RateRequest, opts ...core.CallOption) (core.Rate, error)
	GetTransaction(ctx context.Context, id string, opts ...core.CallOption) (core.Transaction, error)
	ListTransactions(ctx context.Context, req core.ListTransactionsRequest, opts ...core.CallOption) (core.TransactionPage, error)
}

// CachedCatalog serves currency and network listings from a cache and passes
// every other read straight to the source. Failed fetches are not cached.
type CachedCatalog struct {
	source Source
	cache  repositorycache.CacheService
}

func NewCachedCatalog(source Source, cacheService repositorycache.CacheService) (*CachedCatalog, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog: source is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("catalog: cache service is required")
	}
	return &CachedCatalog{source: source, cache: cacheService}, nil
}

// CurrenciesCacheKey returns exolix::catalog::v1::currencies::<params>, where
// params is the sorted, url-encoded listing query.
func CurrenciesCacheKey(req core.ListCurrenciesRequest) string {
	params := url.Values{}
	if req.Page > 0 {
		params.Set("page", strconv.Itoa(req.Page))
	}
	if req.Size > 0 {
		params.Set("size", strconv.Itoa(req.Size))
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		params.Set("search", search)
	}
	if req.WithNetworks {
		params.Set("withNetworks", "true")
	}
	if req.All {
		params.Set("all", "true")
	}
	return cacheKey(KindCurrencies, params.Encode())
}

// NetworksCacheKey returns exolix::catalog::v1::networks::<escaped code>.
func NetworksCacheKey(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("catalog: currency code is required")
	}
	return cacheKey(KindNetworks, url.PathEscape(code)), nil
}

func cacheKey(kind, params string) string {
	return strings.Join([]string{cacheKeyPrefix, kind, params}, "::")
}

func (c *CachedCatalog) ListCurrencies(ctx context.Context, req core.ListCurrenciesRequest, opts ...core.CallOption) (core.CurrencyPage, error) {
	if c == nil || c.source == nil || c.cache == nil {
		return core.CurrencyPage{}, fmt.Errorf("catalog: cached catalog is not configured")
	}
	if err := req.Validate(); err != nil {
		return core.CurrencyPage{}, err
	}
	page, err := repositorycache.GetOrFetch(ctx, c.cache, CurrenciesCacheKey(req), func(ctx context.Context) (core.CurrencyPage, error) {
		return c.source.ListCurrencies(ctx, req, opts...)
	})
	if err != nil {
		return core.CurrencyPage{}, err
	}
	return cloneCurrencyPage(page), nil
}

func (c *CachedCatalog) ListNetworks(ctx context.Context, req core.ListNetworksRequest, opts ...core.CallOption) (core.NetworkPage, error) {
	if c == nil || c.source == nil || c.cache == nil {
		return core.NetworkPage{}, fmt.Errorf("catalog: cached catalog is not configured")
	}
	if err := req.Validate(); err != nil {
		return core.NetworkPage{}, err
	}
	key, err := NetworksCacheKey(req.Code)
	if err != nil {
		return core.NetworkPage{}, err
	}
	page, err := repositorycache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) (core.NetworkPage, error) {
		return c.source.ListNetworks(ctx, req, opts...)
	})
	if err != nil {
		return core.NetworkPage{}, err
	}
	return core.NetworkPage{Data: append([]core.Network(nil), page.Data...), Count: page.Count}, nil
}

func (c *CachedCatalog) GetRate(ctx context.Context, req core.RateRequest, opts ...core.CallOption) (core.Rate, error) {
	if c == nil || c.source == nil {
		return core.Rate{}, fmt.Errorf("catalog: cached catalog is not configured")
	}
	return c.source.GetRate(ctx, req, opts...)
}

func (c *CachedCatalog) GetTransaction(ctx context.Context, id string, opts ...core.CallOption) (core.Transaction, error) {
	if c == nil || c.source == nil {
		return core.Transaction{}, fmt.Errorf("catalog: cached catalog is not configured")
	}
	return c.source.GetTransaction(ctx, id, opts...)
}

func (c *CachedCatalog) ListTransactions(ctx context.Context, req core.ListTransactionsRequest, opts ...core.CallOption) (core.TransactionPage, error) {
	if c == nil || c.source == nil {
		return core.TransactionPage{}, fmt.Errorf("catalog: cached catalog is not configured")
	}
	return c.source.ListTransactions(ctx, req, opts...)
}

// Invalidate drops one cached listing.
func (c *CachedCatalog) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.cache == nil {
		return fmt.Errorf("catalog: cached catalog is not configured")
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, cacheKeyPrefix+"::") {
		return fmt.Errorf("catalog: %q is not a catalog cache key", key)
	}
	return c.cache.Delete(ctx, key)
}

func cloneCurrencyPage(page core.CurrencyPage) core.CurrencyPage {
	cloned := core.CurrencyPage{Count: page.Count}
	if page.Data == nil {
		return cloned
	}
	cloned.Data = make([]core.Currency, len(page.Data))
	for i, currency := range page.Data {
		currency.Networks = append([]core.Network(nil), currency.Networks...)
		cloned.Data[i] = currency
	}
	return cloned
}

var _ Source = (*CachedCatalog)(nil)
