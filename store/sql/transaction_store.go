package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/uptrace/bun"
)

var ErrTransactionNotFound = errors.New("sqlstore: transaction not found")

// TransactionStore is the SQL ledger of transaction snapshots, keyed by the
// Exolix transaction id.
type TransactionStore struct {
	db   *bun.DB
	repo repository.Repository[*transactionRecord]
	now  func() time.Time
}

func NewTransactionStore(db *bun.DB) (*TransactionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*transactionRecord](db, transactionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid transaction repository wiring: %w", err)
		}
	}
	return &TransactionStore{
		db:   db,
		repo: repo,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}, nil
}

func (s *TransactionStore) Upsert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if s == nil || s.db == nil || s.repo == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	exchangeID := strings.TrimSpace(tx.ID)
	if exchangeID == "" {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction id is required")
	}
	now := s.now()
	next, err := newTransactionRecord(tx, now)
	if err != nil {
		return core.Transaction{}, err
	}

	var stored *transactionRecord
	err = s.db.RunInTx(ctx, nil, func(ctx context.Context, dbTx bun.Tx) error {
		current, findErr := findTransactionTx(ctx, dbTx, exchangeID)
		if findErr != nil {
			return findErr
		}
		if current == nil {
			next.ID = uuid.NewString()
			inserted, createErr := s.repo.CreateTx(ctx, dbTx, next)
			if createErr != nil {
				return createErr
			}
			stored = inserted
			return nil
		}

		current.apply(next, now)
		if _, updateErr := dbTx.NewUpdate().Model(current).Where("id = ?", current.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		stored = current
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}
	return stored.toDomain()
}

func (s *TransactionStore) Get(ctx context.Context, id string) (core.Transaction, error) {
	if s == nil || s.repo == nil {
		return core.Transaction{}, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	exchangeID := strings.TrimSpace(id)
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("exchange_id", "=", exchangeID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.Transaction{}, err
	}
	if len(records) == 0 {
		return core.Transaction{}, fmt.Errorf("%w: %q", ErrTransactionNotFound, exchangeID)
	}
	return records[0].toDomain()
}

// ListByStatus returns snapshots oldest first. An empty statuses slice
// matches every status; limit <= 0 means no limit.
func (s *TransactionStore) ListByStatus(ctx context.Context, statuses []core.TransactionStatus, limit int) ([]core.Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: transaction store is not configured")
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(string(status)); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	selectors := []repository.SelectCriteria{
		repository.OrderBy("exchange_created_at ASC"),
	}
	if len(values) > 0 {
		selectors = append(selectors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.status IN (?)", bun.In(values))
		}))
	}
	if limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(limit, 0))
	}

	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Transaction, 0, len(records))
	for _, record := range records {
		tx, err := record.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func findTransactionTx(ctx context.Context, tx bun.Tx, exchangeID string) (*transactionRecord, error) {
	record := &transactionRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.exchange_id = ?", exchangeID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
