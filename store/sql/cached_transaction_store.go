package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/myshadowbank/exolix-sdk/core"
)

const transactionCacheKeyPrefix = "exolix::transaction::v1"

// CachedTransactionStore serves Get from a cache and invalidates the entry on
// every Upsert. ListByStatus always reads through to the base store.
type CachedTransactionStore struct {
	base  core.TransactionStore
	cache repositorycache.CacheService
}

func NewCachedTransactionStore(
	base core.TransactionStore,
	cacheService repositorycache.CacheService,
) (*CachedTransactionStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base transaction store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: transaction cache service is required")
	}
	return &CachedTransactionStore{base: base, cache: cacheService}, nil
}

// TransactionCacheKey returns exolix::transaction::v1::<escaped id>.
func TransactionCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("sqlstore: transaction id is required")
	}
	return transactionCacheKeyPrefix + "::" + url.PathEscape(id), nil
}

func (s *CachedTransactionStore) Get(ctx context.Context, id string) (core.Transaction, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: cached transaction store is not configured")
	}
	key, err := TransactionCacheKey(id)
	if err != nil {
		return core.Transaction{}, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (core.Transaction, error) {
		return s.base.Get(ctx, id)
	})
}

func (s *CachedTransactionStore) Upsert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: cached transaction store is not configured")
	}
	key, err := TransactionCacheKey(tx.ID)
	if err != nil {
		return core.Transaction{}, err
	}
	stored, err := s.base.Upsert(ctx, tx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		return core.Transaction{}, err
	}
	return stored, nil
}

func (s *CachedTransactionStore) ListByStatus(ctx context.Context, statuses []core.TransactionStatus, limit int) ([]core.Transaction, error) {
	if s == nil || s.base == nil {
		return nil, fmt.Errorf("sqlstore: cached transaction store is not configured")
	}
	return s.base.ListByStatus(ctx, statuses, limit)
}
