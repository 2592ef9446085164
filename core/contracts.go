package core

import (
	"context"
	"io"
	"net/http"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// TransportRequest is the fully resolved request handed to a Transport.
// Headers use canonical MIME header keys.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// TransportResponse exposes the parts of an HTTP response the executor
// classifies. Body is owned by the caller of Transport.Do and must be closed.
type TransportResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       io.ReadCloser
}

// Transport performs the network I/O for a single request. Implementations
// must honour ctx cancellation and surface it as an error wrapping
// context.Canceled or context.DeadlineExceeded.
type Transport interface {
	Do(ctx context.Context, req TransportRequest) (*TransportResponse, error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, req TransportRequest) (*TransportResponse, error)

func (f TransportFunc) Do(ctx context.Context, req TransportRequest) (*TransportResponse, error) {
	return f(ctx, req)
}

// Timer is a scheduled callback that can be released before it fires.
type Timer interface {
	Stop() bool
}

// Clock schedules timers for timeout-backed signals.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// TransactionStore persists transaction snapshots observed through the API.
type TransactionStore interface {
	Upsert(ctx context.Context, tx Transaction) (Transaction, error)
	Get(ctx context.Context, id string) (Transaction, error)
	ListByStatus(ctx context.Context, statuses []TransactionStatus, limit int) ([]Transaction, error)
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
