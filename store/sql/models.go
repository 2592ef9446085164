package sqlstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/uptrace/bun"
)

type transactionRecord struct {
	bun.BaseModel `bun:"table:exolix_transactions,alias:et"`

	ID                string         `bun:"id,pk"`
	ExchangeID        string         `bun:"exchange_id,notnull"`
	Status            string         `bun:"status,notnull"`
	CoinFrom          string         `bun:"coin_from,notnull"`
	NetworkFrom       string         `bun:"network_from,notnull"`
	CoinTo            string         `bun:"coin_to,notnull"`
	NetworkTo         string         `bun:"network_to,notnull"`
	Amount            float64        `bun:"amount,notnull"`
	AmountTo          float64        `bun:"amount_to,notnull"`
	Rate              float64        `bun:"rate,notnull"`
	RateType          string         `bun:"rate_type,notnull"`
	DepositAddress    string         `bun:"deposit_address,notnull"`
	WithdrawalAddress string         `bun:"withdrawal_address,notnull"`
	Snapshot          map[string]any `bun:"snapshot,type:jsonb,notnull"`
	ExchangeCreatedAt time.Time      `bun:"exchange_created_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newTransactionRecord(tx core.Transaction, now time.Time) (*transactionRecord, error) {
	snapshot, err := snapshotOf(tx)
	if err != nil {
		return nil, err
	}
	createdAt := tx.CreatedAt.UTC()
	if tx.CreatedAt.IsZero() {
		createdAt = now
	}
	return &transactionRecord{
		ExchangeID:        strings.TrimSpace(tx.ID),
		Status:            string(tx.Status),
		CoinFrom:          tx.CoinFrom.CoinCode,
		NetworkFrom:       tx.CoinFrom.Network,
		CoinTo:            tx.CoinTo.CoinCode,
		NetworkTo:         tx.CoinTo.Network,
		Amount:            tx.Amount.Float64(),
		AmountTo:          tx.AmountTo.Float64(),
		Rate:              tx.Rate.Float64(),
		RateType:          string(tx.RateType),
		DepositAddress:    tx.DepositAddress,
		WithdrawalAddress: tx.WithdrawalAddress,
		Snapshot:          snapshot,
		ExchangeCreatedAt: createdAt,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// apply copies the mutable columns of next onto r, keeping identity and
// first-seen timestamps.
func (r *transactionRecord) apply(next *transactionRecord, now time.Time) {
	r.Status = next.Status
	r.CoinFrom = next.CoinFrom
	r.NetworkFrom = next.NetworkFrom
	r.CoinTo = next.CoinTo
	r.NetworkTo = next.NetworkTo
	r.Amount = next.Amount
	r.AmountTo = next.AmountTo
	r.Rate = next.Rate
	r.RateType = next.RateType
	r.DepositAddress = next.DepositAddress
	r.WithdrawalAddress = next.WithdrawalAddress
	r.Snapshot = next.Snapshot
	r.ExchangeCreatedAt = next.ExchangeCreatedAt
	r.UpdatedAt = now
}

func (r *transactionRecord) toDomain() (core.Transaction, error) {
	if r == nil {
		return core.Transaction{}, nil
	}
	var out core.Transaction
	if len(r.Snapshot) > 0 {
		raw, err := json.Marshal(r.Snapshot)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("sqlstore: encode snapshot %q: %w", r.ExchangeID, err)
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return core.Transaction{}, fmt.Errorf("sqlstore: decode snapshot %q: %w", r.ExchangeID, err)
		}
	}
	// Indexed columns are authoritative over the snapshot.
	out.ID = r.ExchangeID
	out.Status = core.TransactionStatus(r.Status)
	out.CreatedAt = r.ExchangeCreatedAt.UTC()
	return out, nil
}

func snapshotOf(tx core.Transaction) (map[string]any, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: encode transaction %q: %w", tx.ID, err)
	}
	snapshot := map[string]any{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("sqlstore: encode transaction %q: %w", tx.ID, err)
	}
	return snapshot, nil
}
