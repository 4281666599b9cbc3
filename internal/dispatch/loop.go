// Package dispatch runs closures one at a time on a single goroutine.
//
// The time slider and north arrow controllers are not safe for concurrent
// use; HTTP handlers and Kafka consumers reach them only through a Loop.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrStopped = errors.New("dispatch: loop stopped")

type task struct {
	fn   func()
	done chan any
}

type Loop struct {
	log   *slog.Logger
	tasks chan task
	stop  chan struct{}
}

func New(queueSize int, log *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = 64
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		log:   log.With("component", "dispatch"),
		tasks: make(chan task, queueSize),
		stop:  make(chan struct{}),
	}
}

// Run executes submitted closures until ctx ends. Tasks still queued at that
// point are dropped and their Do callers get ErrStopped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.stop)
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("dispatch loop stopping", "pending", len(l.tasks))
			return
		case t := <-l.tasks:
			l.exec(t)
		}
	}
}

func (l *Loop) exec(t task) {
	defer func() {
		rec := recover()
		if rec != nil {
			l.log.Error("dispatch task panicked", "panic", rec)
		}
		if t.done != nil {
			t.done <- rec
		}
	}()
	t.fn()
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	t := task{fn: fn, done: make(chan any, 1)}
	select {
	case l.tasks <- t:
	case <-l.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case rec := <-t.done:
		if rec != nil {
			return fmt.Errorf("dispatch: task panicked: %v", rec)
		}
		return nil
	case <-l.stop:
		// Run may have finished this task just before stopping
		select {
		case rec := <-t.done:
			if rec != nil {
				return fmt.Errorf("dispatch: task panicked: %v", rec)
			}
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.stop }

// Post queues fn without waiting. It reports false when the loop is stopped
// or the queue is full.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stop:
		return false
	default:
	}
	select {
	case l.tasks <- task{fn: fn}:
		return true
	default:
		l.log.Warn("dispatch queue full; dropping task")
		return false
	}
}
