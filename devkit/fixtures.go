package devkit

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/myshadowbank/exolix-sdk/core"
)

// TransactionJSON renders a minimal API transaction body with the given id
// and status.
func TransactionJSON(id string, status core.TransactionStatus) string {
	return fmt.Sprintf(`{
		"id":%q,"amount":0.5,"amountTo":8.2,
		"coinFrom":{"coinCode":"BTC","network":"BTC"},
		"coinTo":{"coinCode":"ETH","network":"ETH"},
		"createdAt":"2024-03-01T10:00:00Z",
		"depositAddress":"bc1qdeposit","withdrawalAddress":"0xwithdrawal",
		"hashIn":{"hash":null,"link":null},"hashOut":{"hash":null,"link":null},
		"rate":16.4,"rateType":"float","status":%q
	}`, id, string(status))
}

// TransactionStoreFixture is an in-memory core.TransactionStore.
type TransactionStoreFixture struct {
	mu      sync.Mutex
	records map[string]core.Transaction
	order   []string
}

func NewTransactionStoreFixture() *TransactionStoreFixture {
	return &TransactionStoreFixture{records: map[string]core.Transaction{}}
}

func (s *TransactionStoreFixture) Upsert(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	id := strings.TrimSpace(tx.ID)
	if id == "" {
		return core.Transaction{}, fmt.Errorf("devkit: transaction id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		s.order = append(s.order, id)
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	s.records[id] = tx
	return tx, nil
}

func (s *TransactionStoreFixture) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.records[strings.TrimSpace(id)]
	if !ok {
		return core.Transaction{}, fmt.Errorf("devkit: transaction %q not found", id)
	}
	return tx, nil
}

func (s *TransactionStoreFixture) ListByStatus(_ context.Context, statuses []core.TransactionStatus, limit int) ([]core.Transaction, error) {
	allowed := map[core.TransactionStatus]bool{}
	for _, status := range statuses {
		allowed[status] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.records))
	for _, id := range s.order {
		tx := s.records[id]
		if len(allowed) > 0 && !allowed[tx.Status] {
			continue
		}
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ core.TransactionStore = (*TransactionStoreFixture)(nil)
