package devkit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/myshadowbank/exolix-sdk/core"
)

// ValidateTransportConformance checks that transport delivers a request and
// reports cancellation as a context error.
func ValidateTransportConformance(ctx context.Context, transport core.Transport, request core.TransportRequest) error {
	if transport == nil {
		return fmt.Errorf("devkit: transport is required")
	}
	res, err := transport.Do(ctx, request)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("devkit: transport returned no response")
	}
	if res.Body != nil {
		_ = res.Body.Close()
	}
	if res.StatusCode < http.StatusContinue {
		return fmt.Errorf("devkit: transport returned invalid status %d", res.StatusCode)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if res, err := transport.Do(cancelled, request); err == nil {
		if res != nil && res.Body != nil {
			_ = res.Body.Close()
		}
		return fmt.Errorf("devkit: transport ignored a cancelled context")
	}
	return nil
}

// ValidateTransactionStoreConformance exercises upsert, get and status
// filtering against store.
func ValidateTransactionStoreConformance(ctx context.Context, store core.TransactionStore) error {
	if store == nil {
		return fmt.Errorf("devkit: transaction store is required")
	}
	createdAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pending := core.Transaction{
		ID:        "conformance_pending",
		Amount:    0.5,
		CoinFrom:  core.TransactionCoin{CoinCode: "BTC"},
		CoinTo:    core.TransactionCoin{CoinCode: "ETH"},
		CreatedAt: createdAt,
		Status:    core.TransactionStatusWait,
	}
	done := pending
	done.ID = "conformance_done"
	done.CreatedAt = createdAt.Add(time.Minute)
	done.Status = core.TransactionStatusSuccess

	for _, tx := range []core.Transaction{pending, done} {
		if _, err := store.Upsert(ctx, tx); err != nil {
			return err
		}
	}

	pending.Status = core.TransactionStatusExchanging
	if _, err := store.Upsert(ctx, pending); err != nil {
		return err
	}
	loaded, err := store.Get(ctx, pending.ID)
	if err != nil {
		return err
	}
	if loaded.Status != core.TransactionStatusExchanging {
		return fmt.Errorf("devkit: expected upsert to update status, got %q", loaded.Status)
	}
	if loaded.CoinFrom.CoinCode != "BTC" || loaded.Amount != 0.5 {
		return fmt.Errorf("devkit: expected snapshot to round trip, got %#v", loaded)
	}

	open, err := store.ListByStatus(ctx, []core.TransactionStatus{core.TransactionStatusExchanging}, 10)
	if err != nil {
		return err
	}
	if len(open) != 1 || open[0].ID != pending.ID {
		return fmt.Errorf("devkit: expected one exchanging transaction, got %d", len(open))
	}
	if _, err := store.Get(ctx, "conformance_missing"); err == nil {
		return fmt.Errorf("devkit: expected missing transaction error")
	}
	return nil
}
