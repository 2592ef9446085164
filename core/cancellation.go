package core

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrRequestTimedOut is the cancellation cause recorded when a timeout-backed
// signal fires before the call settles.
var ErrRequestTimedOut = errors.New("request timed out")

// EffectiveSignal is the single cancellation token handed to the transport
// for one call. The owner must call Release once the call settles.
type EffectiveSignal struct {
	ctx     context.Context
	timer   Timer
	cancel  context.CancelCauseFunc
	detach  []func() bool
	release sync.Once
}

// Context returns the effective cancellation context.
func (s *EffectiveSignal) Context() context.Context {
	if s == nil || s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

// Timer returns the timeout timer, or nil when no timeout was configured.
func (s *EffectiveSignal) Timer() Timer {
	if s == nil {
		return nil
	}
	return s.timer
}

func (s *EffectiveSignal) HasTimer() bool {
	return s.Timer() != nil
}

// Bounded reports whether the signal can ever trigger.
func (s *EffectiveSignal) Bounded() bool {
	return s != nil && s.ctx != nil && s.ctx.Done() != nil
}

// Release stops the timer and detaches upstream listeners. It is safe to call
// more than once; only the first call has an effect.
func (s *EffectiveSignal) Release() {
	if s == nil {
		return
	}
	s.release.Do(func() {
		if s.timer != nil {
			s.timer.Stop()
		}
		for _, stop := range s.detach {
			stop()
		}
		if s.cancel != nil {
			s.cancel(context.Canceled)
		}
	})
}

// ComposeSignal merges upstream signals and an optional timeout into one
// effective signal. Nil upstream contexts are ignored. With no upstream signal
// and no timeout the result never triggers and no timer is allocated.
func ComposeSignal(clock Clock, timeout time.Duration, signals ...context.Context) *EffectiveSignal {
	upstream := make([]context.Context, 0, len(signals))
	for _, signal := range signals {
		if signal == nil || signal.Done() == nil {
			continue
		}
		upstream = append(upstream, signal)
	}

	if timeout <= 0 {
		switch len(upstream) {
		case 0:
			return &EffectiveSignal{ctx: context.Background()}
		case 1:
			return &EffectiveSignal{ctx: upstream[0]}
		}
	}

	base := context.Background()
	if len(upstream) > 0 {
		base = upstream[0]
	}
	ctx, cancel := context.WithCancelCause(base)
	signal := &EffectiveSignal{ctx: ctx, cancel: cancel}

	triggered := false
	for _, source := range upstream {
		if source.Err() != nil {
			cancel(context.Cause(source))
			triggered = true
			break
		}
	}
	// upstream[0] is the parent and propagates on its own.
	if !triggered && len(upstream) > 1 {
		for _, source := range upstream[1:] {
			src := source
			signal.detach = append(signal.detach, context.AfterFunc(src, func() {
				cancel(context.Cause(src))
			}))
		}
	}

	if timeout > 0 {
		if clock == nil {
			clock = NewClock(nil)
		}
		signal.timer = clock.AfterFunc(timeout, func() {
			cancel(ErrRequestTimedOut)
		})
	}
	return signal
}
