package tracking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/myshadowbank/exolix-sdk/core"
)

const (
	JobIDRefreshTransaction = "exolix.transaction.refresh"

	ParamTransactionID = "transaction_id"
	ParamPollDelayMS   = "poll_delay_ms"

	DefaultPollDelay = 30 * time.Second
)

// Reader fetches the current state of a transaction from the API.
type Reader interface {
	GetTransaction(ctx context.Context, id string, opts ...core.CallOption) (core.Transaction, error)
}

// Tracker keeps the ledger in step with the API: Refresh pulls one snapshot,
// Watch schedules repeated refreshes through the job queue.
type Tracker struct {
	reader    Reader
	store     core.TransactionStore
	enqueuer  core.JobEnqueuer
	pollDelay time.Duration
}

type Option func(*Tracker)

func WithStore(store core.TransactionStore) Option {
	return func(t *Tracker) {
		t.store = store
	}
}

func WithEnqueuer(enqueuer core.JobEnqueuer) Option {
	return func(t *Tracker) {
		t.enqueuer = enqueuer
	}
}

func WithPollDelay(delay time.Duration) Option {
	return func(t *Tracker) {
		if delay > 0 {
			t.pollDelay = delay
		}
	}
}

func NewTracker(reader Reader, opts ...Option) (*Tracker, error) {
	if reader == nil {
		return nil, fmt.Errorf("tracking: transaction reader is required")
	}
	tracker := &Tracker{reader: reader, pollDelay: DefaultPollDelay}
	for _, opt := range opts {
		if opt != nil {
			opt(tracker)
		}
	}
	return tracker, nil
}

func (t *Tracker) PollDelay() time.Duration {
	if t == nil || t.pollDelay <= 0 {
		return DefaultPollDelay
	}
	return t.pollDelay
}

// Refresh fetches id and, when a ledger is configured, records the snapshot.
func (t *Tracker) Refresh(ctx context.Context, id string) (core.Transaction, error) {
	if t == nil || t.reader == nil {
		return core.Transaction{}, fmt.Errorf("tracking: tracker is not configured")
	}
	tx, err := t.reader.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.store == nil {
		return tx, nil
	}
	return t.store.Upsert(ctx, tx)
}

// Watch enqueues a refresh job for id. A non-positive delay uses the tracker
// poll delay between refreshes.
func (t *Tracker) Watch(ctx context.Context, id string, delay time.Duration) error {
	if t == nil || t.enqueuer == nil {
		return fmt.Errorf("tracking: job enqueuer is required to watch transactions")
	}
	msg, err := RefreshMessage(id, delay)
	if err != nil {
		return err
	}
	return t.enqueuer.Enqueue(ctx, msg)
}

// RefreshMessage builds the job message that refreshes id until it settles.
func RefreshMessage(id string, delay time.Duration) (*core.JobExecutionMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("tracking: transaction id is required")
	}
	params := map[string]any{ParamTransactionID: id}
	if delay > 0 {
		params[ParamPollDelayMS] = delay.Milliseconds()
	}
	return &core.JobExecutionMessage{
		JobID:          JobIDRefreshTransaction,
		ScriptPath:     JobIDRefreshTransaction,
		Parameters:     params,
		IdempotencyKey: JobIDRefreshTransaction + "::" + id,
	}, nil
}

func transactionIDOf(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	value, _ := msg.Parameters[ParamTransactionID].(string)
	return strings.TrimSpace(value)
}

func pollDelayOf(msg *core.JobExecutionMessage) time.Duration {
	if msg == nil {
		return 0
	}
	var millis int64
	switch value := msg.Parameters[ParamPollDelayMS].(type) {
	case int:
		millis = int64(value)
	case int64:
		millis = value
	case float64:
		millis = int64(value)
	default:
		return 0
	}
	if millis <= 0 {
		return 0
	}
	return time.Duration(millis) * time.Millisecond
}
