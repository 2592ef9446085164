package tracking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	"github.com/myshadowbank/exolix-sdk/core"
)

const DefaultMaxAttempts = 240

// Refresher is the part of Tracker the worker drives.
type Refresher interface {
	Refresh(ctx context.Context, id string) (core.Transaction, error)
}

// attemptNacker is implemented by deliveries that apply their own retry
// bounds, such as the go-job delivery adapter.
type attemptNacker interface {
	NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error
}

// Worker consumes refresh jobs. A delivery is acked once the transaction
// reaches a final status and requeued after the poll delay otherwise.
type Worker struct {
	Refresher   Refresher
	Dequeuer    core.JobDequeuer
	Hook        core.JobWorkerHook
	Logger      core.Logger
	PollDelay   time.Duration
	MaxAttempts int
	Now         func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

func NewWorker(refresher Refresher, dequeuer core.JobDequeuer) *Worker {
	return &Worker{
		Refresher:   refresher,
		Dequeuer:    dequeuer,
		Logger:      glog.Nop(),
		PollDelay:   DefaultPollDelay,
		MaxAttempts: DefaultMaxAttempts,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Run dequeues and processes deliveries until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.Dequeuer == nil {
		return fmt.Errorf("tracking: worker requires a dequeuer")
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		delivery, err := w.Dequeuer.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("tracking: dequeue: %w", err)
		}
		if delivery == nil {
			continue
		}
		if err := w.Process(ctx, delivery); err != nil {
			w.logger().Error("exolix tracking delivery failed", "error", err)
		}
	}
}

// Process handles one delivery and settles it with exactly one Ack or Nack.
func (w *Worker) Process(ctx context.Context, delivery core.JobDelivery) error {
	if w == nil || w.Refresher == nil {
		return fmt.Errorf("tracking: worker requires a refresher")
	}
	if delivery == nil {
		return fmt.Errorf("tracking: delivery is required")
	}
	msg := delivery.Message()
	if msg == nil || strings.TrimSpace(msg.JobID) != JobIDRefreshTransaction {
		return delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: "unsupported job"})
	}
	id := transactionIDOf(msg)
	if id == "" {
		return delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: "missing transaction id"})
	}

	attempt := w.nextAttempt(id)
	startedAt := w.now()
	event := core.JobWorkerEvent{Message: msg, Attempt: attempt, StartedAt: startedAt}
	w.onStart(ctx, event)

	tx, err := w.Refresher.Refresh(ctx, id)
	event.Duration = w.now().Sub(startedAt)

	switch {
	case err != nil && ctx.Err() != nil:
		// Shutdown: hand the job back untouched. Per-call timeouts fall
		// through to the retry path and count as attempts.
		w.forgetAttempt(id, attempt)
		event.Err = err
		w.onFailure(ctx, event)
		return delivery.Nack(context.WithoutCancel(ctx), core.JobNackOptions{Requeue: true, Reason: "cancelled"})
	case err != nil && core.IsValidation(err):
		w.resetAttempts(id)
		event.Err = err
		w.onFailure(ctx, event)
		return delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: err.Error()})
	case err == nil && tx.Status.Final():
		w.resetAttempts(id)
		w.onSuccess(ctx, event)
		w.logger().Info("exolix transaction settled", "transaction_id", id, "status", string(tx.Status), "attempt", attempt)
		return delivery.Ack(ctx)
	}

	reason := "status " + string(tx.Status)
	if err != nil {
		reason = err.Error()
		event.Err = err
	} else {
		event.Err = errPending
	}
	event.Delay = w.delayFor(msg)
	opts := core.JobNackOptions{Requeue: true, Delay: event.Delay, Reason: reason}

	if w.MaxAttempts > 0 && attempt >= w.MaxAttempts {
		w.resetAttempts(id)
		opts.Requeue = false
		opts.DeadLetter = true
		w.onFailure(ctx, event)
		w.logger().Warn("exolix transaction watch exhausted", "transaction_id", id, "attempt", attempt, "reason", reason)
	} else {
		w.onRetry(ctx, event)
	}

	if nacker, ok := delivery.(attemptNacker); ok {
		return nacker.NackForAttempt(ctx, opts, attempt)
	}
	return delivery.Nack(ctx, opts)
}

var errPending = errors.New("tracking: transaction not settled")

func (w *Worker) delayFor(msg *core.JobExecutionMessage) time.Duration {
	if delay := pollDelayOf(msg); delay > 0 {
		return delay
	}
	if w.PollDelay > 0 {
		return w.PollDelay
	}
	return DefaultPollDelay
}

func (w *Worker) nextAttempt(id string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempts == nil {
		w.attempts = map[string]int{}
	}
	w.attempts[id]++
	return w.attempts[id]
}

// forgetAttempt undoes the attempt counted for a delivery that never reached
// the API.
func (w *Worker) forgetAttempt(id string, attempt int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.attempts[id] == attempt {
		w.attempts[id] = attempt - 1
	}
	if w.attempts[id] <= 0 {
		delete(w.attempts, id)
	}
}

func (w *Worker) resetAttempts(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.attempts, id)
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now().UTC()
	}
	return time.Now().UTC()
}

func (w *Worker) logger() core.Logger {
	return glog.Ensure(w.Logger)
}

func (w *Worker) onStart(ctx context.Context, event core.JobWorkerEvent) {
	if w.Hook != nil {
		w.Hook.OnStart(ctx, event)
	}
}

func (w *Worker) onSuccess(ctx context.Context, event core.JobWorkerEvent) {
	if w.Hook != nil {
		w.Hook.OnSuccess(ctx, event)
	}
}

func (w *Worker) onFailure(ctx context.Context, event core.JobWorkerEvent) {
	if w.Hook != nil {
		w.Hook.OnFailure(ctx, event)
	}
}

func (w *Worker) onRetry(ctx context.Context, event core.JobWorkerEvent) {
	if w.Hook != nil {
		w.Hook.OnRetry(ctx, event)
	}
}

var _ Refresher = (*Tracker)(nil)
