package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/daytodo/internal/storage"
)

var (
	ErrPersist = errors.New("store: persist failed")
	ErrClosed  = errors.New("store: closed")
)

// pendingWrite completes once the write covering a mutation has finished.
type pendingWrite struct {
	done chan struct{}
	err  error
}

func (p *pendingWrite) finish(err error) {
	p.err = err
	close(p.done)
}

func finishedWrite(err error) *pendingWrite {
	p := &pendingWrite{done: make(chan struct{})}
	p.finish(err)
	return p
}

// Outcome is returned by every mutation. Count is the number of tasks the
// mutation added or removed (ToggleDone: 1 when the task is now done).
type Outcome struct {
	Count int
	// Warn carries a non-fatal notification failure.
	Warn  error
	write *pendingWrite
}

// Wait blocks until the snapshot covering this mutation has been written.
// The returned error wraps ErrPersist on failure.
func (o Outcome) Wait(ctx context.Context) error {
	if o.write == nil {
		return nil
	}
	select {
	case <-o.write.done:
		return o.write.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// writer persists snapshots on a single goroutine. Snapshots queued while a
// write is in flight collapse into the newest one; every waiter of a
// collapsed snapshot receives the result of the write that superseded it.
type writer struct {
	backend storage.Backend
	logger  *log.Logger

	mu      sync.Mutex
	next    *storage.Snapshot
	waiters []*pendingWrite
	closed  bool

	wakeup chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

func newWriter(backend storage.Backend, logger *log.Logger) *writer {
	w := &writer{
		backend: backend,
		logger:  logger,
		wakeup:  make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *writer) enqueue(snap storage.Snapshot) *pendingWrite {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return finishedWrite(fmt.Errorf("%w: %w", ErrPersist, ErrClosed))
	}
	p := &pendingWrite{done: make(chan struct{})}
	w.next = &snap
	w.waiters = append(w.waiters, p)
	w.mu.Unlock()

	select {
	case w.wakeup <- struct{}{}:
	default:
	}
	return p
}

func (w *writer) loop() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.wakeup:
			w.flush()
		case <-w.stopCh:
			w.flush()
			return
		}
	}
}

func (w *writer) flush() {
	for {
		w.mu.Lock()
		snap, waiters := w.next, w.waiters
		w.next, w.waiters = nil, nil
		w.mu.Unlock()
		if snap == nil {
			return
		}

		var err error
		if saveErr := w.backend.Save(context.Background(), *snap); saveErr != nil {
			err = fmt.Errorf("%w: %s: %w", ErrPersist, w.backend.Name(), saveErr)
			w.logger.Error("persist snapshot", "backend", w.backend.Name(), "tasks", snap.Len(), "err", saveErr)
		} else {
			w.logger.Debug("persisted snapshot", "backend", w.backend.Name(), "tasks", snap.Len(), "coalesced", len(waiters))
		}
		for _, p := range waiters {
			p.finish(err)
		}
	}
}

// close stops accepting snapshots and waits until the queue is drained.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.stopCh)
	select {
	case <-w.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
