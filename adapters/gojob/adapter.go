// Package gojob runs transaction watches on go-job queues.
package gojob

import (
	"context"
	"fmt"
	"strings"
	"time"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/myshadowbank/exolix-sdk/tracking"
)

// Policy bounds how long a watched transaction keeps coming back.
type Policy struct {
	MaxAttempts int
	// MaxDelay caps the poll delay a watch may request.
	MaxDelay time.Duration
	// DeadLetterOnMax parks exhausted watches instead of dropping them.
	DeadLetterOnMax bool
}

// DefaultPolicy polls for up to two hours at the default poll delay and
// dead-letters the watch afterwards.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:     tracking.DefaultMaxAttempts,
		MaxDelay:        10 * time.Minute,
		DeadLetterOnMax: true,
	}
}

// settle turns the worker's nack for attempt into the go-job nack.
func (p Policy) settle(opts core.JobNackOptions, attempt int) queue.NackOptions {
	out := queue.NackOptions{
		Delay:      min(max(opts.Delay, 0), p.delayCap()),
		Requeue:    opts.Requeue && !opts.DeadLetter,
		DeadLetter: opts.DeadLetter,
		Reason:     strings.TrimSpace(opts.Reason),
	}
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		out.Requeue = false
		out.DeadLetter = out.DeadLetter || p.DeadLetterOnMax
	}
	if !out.Requeue && !out.DeadLetter {
		// go-job drops a nack that neither requeues nor parks.
		out.Requeue = true
	}
	return out
}

func (p Policy) delayCap() time.Duration {
	if p.MaxDelay <= 0 {
		return time.Duration(1<<63 - 1)
	}
	return p.MaxDelay
}

// RefreshEnqueuer publishes refresh jobs built by tracking.RefreshMessage.
type RefreshEnqueuer struct {
	queue queue.Enqueuer
}

func NewRefreshEnqueuer(q queue.Enqueuer) *RefreshEnqueuer {
	return &RefreshEnqueuer{queue: q}
}

// Enqueue rejects anything that is not a refresh job carrying a
// transaction id.
func (e *RefreshEnqueuer) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if e == nil || e.queue == nil {
		return fmt.Errorf("gojob: queue is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: refresh message is required")
	}
	if id := strings.TrimSpace(msg.JobID); id != tracking.JobIDRefreshTransaction {
		return fmt.Errorf("gojob: unsupported job %q", id)
	}
	if _, ok := transactionID(msg.Parameters); !ok {
		return fmt.Errorf("gojob: refresh job has no %s", tracking.ParamTransactionID)
	}
	return e.queue.Enqueue(ctx, toJob(msg))
}

type refreshDelivery struct {
	raw    queue.Delivery
	policy Policy
}

func (d *refreshDelivery) Message() *core.JobExecutionMessage {
	return fromJob(d.raw.Message())
}

func (d *refreshDelivery) Ack(ctx context.Context) error {
	return d.raw.Ack(ctx)
}

func (d *refreshDelivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	return d.NackForAttempt(ctx, opts, 0)
}

func (d *refreshDelivery) NackForAttempt(ctx context.Context, opts core.JobNackOptions, attempt int) error {
	return d.raw.Nack(ctx, d.policy.settle(opts, attempt))
}

type refreshDequeuer struct {
	queue  queue.Dequeuer
	policy Policy
}

// Dequeue returns a nil delivery when the queue is idle.
func (d *refreshDequeuer) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	raw, err := d.queue.Dequeue(ctx)
	if err != nil || raw == nil {
		return nil, err
	}
	return &refreshDelivery{raw: raw, policy: d.policy}, nil
}

// hookBridge reports tracking worker events to a go-job worker hook.
type hookBridge struct {
	hook worker.Hook
}

func (b hookBridge) OnStart(ctx context.Context, event core.JobWorkerEvent) {
	b.hook.OnStart(ctx, toWorkerEvent(event))
}

func (b hookBridge) OnSuccess(ctx context.Context, event core.JobWorkerEvent) {
	b.hook.OnSuccess(ctx, toWorkerEvent(event))
}

func (b hookBridge) OnFailure(ctx context.Context, event core.JobWorkerEvent) {
	b.hook.OnFailure(ctx, toWorkerEvent(event))
}

func (b hookBridge) OnRetry(ctx context.Context, event core.JobWorkerEvent) {
	b.hook.OnRetry(ctx, toWorkerEvent(event))
}

// Options configures NewTrackingWorker. The zero value uses DefaultPolicy.
type Options struct {
	Policy *Policy
	Hook   worker.Hook
	Logger core.Logger
}

// NewTrackingWorker builds a refresh worker consuming go-job deliveries.
// Attempts beyond Policy.MaxAttempts are dead-lettered by the delivery.
func NewTrackingWorker(refresher tracking.Refresher, q queue.Dequeuer, opts Options) (*tracking.Worker, error) {
	if refresher == nil {
		return nil, fmt.Errorf("gojob: refresher is required")
	}
	if q == nil {
		return nil, fmt.Errorf("gojob: dequeuer is required")
	}
	policy := DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	w := tracking.NewWorker(refresher, &refreshDequeuer{queue: q, policy: policy})
	w.MaxAttempts = policy.MaxAttempts
	if opts.Hook != nil {
		w.Hook = hookBridge{hook: opts.Hook}
	}
	if opts.Logger != nil {
		w.Logger = opts.Logger
	}
	return w, nil
}

func toJob(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func fromJob(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParams(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

func toWorkerEvent(event core.JobWorkerEvent) worker.Event {
	return worker.Event{
		Message:   toJob(event.Message),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func transactionID(params map[string]any) (string, bool) {
	id, _ := params[tracking.ParamTransactionID].(string)
	id = strings.TrimSpace(id)
	return id, id != ""
}

func cloneParams(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.JobEnqueuer   = (*RefreshEnqueuer)(nil)
	_ core.JobDequeuer   = (*refreshDequeuer)(nil)
	_ core.JobWorkerHook = hookBridge{}
)
