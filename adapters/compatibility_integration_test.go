package adapters_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-command"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/myshadowbank/exolix-sdk/adapters/gocommand"
	"github.com/myshadowbank/exolix-sdk/adapters/gojob"
	"github.com/myshadowbank/exolix-sdk/adapters/gologger"
	exolixcommand "github.com/myshadowbank/exolix-sdk/command"
	"github.com/myshadowbank/exolix-sdk/core"
	"github.com/myshadowbank/exolix-sdk/devkit"
	"github.com/myshadowbank/exolix-sdk/tracking"
)

func TestRuntimeCompatibility_GoJobGoCommandGoLogger(t *testing.T) {
	logger := &compatLogger{}
	provider := &compatProvider{logger: logger}

	workerLogger, jobLogger := gologger.ResolveForTracking(provider, nil)
	if workerLogger == nil || jobLogger == nil {
		t.Fatalf("expected tracking and go-job loggers")
	}

	queueRegistry := jobqueuecommand.NewRegistry()
	commandAdapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := commandAdapter.AddQueueResolver("queue", queueRegistry); err != nil {
		t.Fatalf("add queue resolver: %v", err)
	}
	if err := commandAdapter.RegisterCommand(command.CommandFunc[compatMessage](func(context.Context, compatMessage) error {
		return nil
	})); err != nil {
		t.Fatalf("register command: %v", err)
	}
	if err := commandAdapter.Initialize(); err != nil {
		t.Fatalf("initialize command registry: %v", err)
	}
	if _, ok := queueRegistry.Get("exolix.compat.command"); !ok {
		t.Fatalf("expected command resolver hook to mirror command into go-job queue registry")
	}
}

func TestRuntimeCompatibility_WatchCommandDrivesRefreshWorkerToSettlement(t *testing.T) {
	ctx := context.Background()
	transport := devkit.NewFakeTransport(
		devkit.JSONScript(http.StatusOK, devkit.TransactionJSON("ex_watch_1", core.TransactionStatusExchanging)),
		devkit.JSONScript(http.StatusOK, devkit.TransactionJSON("ex_watch_1", core.TransactionStatusSuccess)),
	)
	client, err := core.NewClient(core.Config{BaseURL: "https://exolix.test/api/v2"}, core.WithTransport(transport))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ledger := devkit.NewTransactionStoreFixture()
	jobs := &memoryQueue{}

	tracker, err := tracking.NewTracker(client,
		tracking.WithStore(ledger),
		tracking.WithEnqueuer(gojob.NewRefreshEnqueuer(jobs)),
	)
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}

	adapter := gocommand.NewRegistryAdapter(command.NewRegistry())
	subscriptions, err := gocommand.RegisterHandlers(adapter, gocommand.Handlers{
		WatchTransaction: exolixcommand.NewWatchTransactionCommand(tracker),
	})
	if err != nil {
		t.Fatalf("register handlers: %v", err)
	}
	t.Cleanup(subscriptions.Unsubscribe)

	if err := gocommand.Dispatch(ctx, exolixcommand.WatchTransactionMessage{
		TransactionID: "ex_watch_1",
		Delay:         time.Second,
	}); err != nil {
		t.Fatalf("dispatch watch: %v", err)
	}
	if jobs.Len() != 1 {
		t.Fatalf("expected one queued refresh job, got %d", jobs.Len())
	}

	hook := &compatHook{}
	refreshWorker, err := gojob.NewTrackingWorker(tracker, jobs, gojob.Options{Hook: hook})
	if err != nil {
		t.Fatalf("new tracking worker: %v", err)
	}

	for i := 0; i < 2; i++ {
		delivery, err := refreshWorker.Dequeuer.Dequeue(ctx)
		if err != nil {
			t.Fatalf("dequeue %d: %v", i, err)
		}
		if err := refreshWorker.Process(ctx, delivery); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}

	if jobs.Len() != 0 {
		t.Fatalf("expected queue to drain once settled, got %d", jobs.Len())
	}
	if jobs.acks != 1 || jobs.requeues != 1 {
		t.Fatalf("expected one requeue then one ack, requeues=%d acks=%d", jobs.requeues, jobs.acks)
	}
	if jobs.lastDelay != time.Second {
		t.Fatalf("expected watch delay on requeue, got %s", jobs.lastDelay)
	}
	stored, err := ledger.Get(ctx, "ex_watch_1")
	if err != nil {
		t.Fatalf("ledger get: %v", err)
	}
	if stored.Status != core.TransactionStatusSuccess {
		t.Fatalf("expected settled status in ledger, got %q", stored.Status)
	}
	if hook.retries != 1 || hook.successes != 1 {
		t.Fatalf("expected one retry and one success hook, got %d/%d", hook.retries, hook.successes)
	}
}

type compatMessage struct{}

func (compatMessage) Type() string { return "exolix.compat.command" }

// memoryQueue is a single-consumer go-job queue backed by a slice.
type memoryQueue struct {
	mu        sync.Mutex
	pending   []*job.ExecutionMessage
	acks      int
	requeues  int
	lastDelay time.Duration
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil, nil
	}
	msg := q.pending[0]
	q.pending = q.pending[1:]
	return &memoryDelivery{queue: q, msg: msg}, nil
}

func (q *memoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

type memoryDelivery struct {
	queue *memoryQueue
	msg   *job.ExecutionMessage
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	return d.msg
}

func (d *memoryDelivery) Ack(context.Context) error {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	d.queue.acks++
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	d.queue.mu.Lock()
	defer d.queue.mu.Unlock()
	if opts.Requeue {
		d.queue.requeues++
		d.queue.lastDelay = opts.Delay
		d.queue.pending = append(d.queue.pending, d.msg)
	}
	return nil
}

type compatHook struct {
	retries   int
	successes int
}

func (h *compatHook) OnStart(context.Context, worker.Event)   {}
func (h *compatHook) OnFailure(context.Context, worker.Event) {}
func (h *compatHook) OnSuccess(context.Context, worker.Event) {
	h.successes++
}
func (h *compatHook) OnRetry(context.Context, worker.Event) {
	h.retries++
}

type compatProvider struct {
	logger glog.Logger
}

func (p *compatProvider) GetLogger(string) glog.Logger {
	if p == nil || p.logger == nil {
		return glog.Nop()
	}
	return p.logger
}

type compatLogger struct{}

func (compatLogger) Trace(string, ...any)                    {}
func (compatLogger) Debug(string, ...any)                    {}
func (compatLogger) Info(string, ...any)                     {}
func (compatLogger) Warn(string, ...any)                     {}
func (compatLogger) Error(string, ...any)                    {}
func (compatLogger) Fatal(string, ...any)                    {}
func (compatLogger) WithContext(context.Context) glog.Logger { return compatLogger{} }
