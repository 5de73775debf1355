package task

import (
	"context"
	"fmt"
	"sync"
)

type snapshot struct {
	gen  uint64
	data string
}

// writer persists snapshots one at a time. Only the newest pending snapshot
// is kept: enqueueing replaces anything not yet started, so an older
// collection can never land after a newer one.
type writer struct {
	kv    KV
	key   string
	onErr func(error)

	mu      sync.Mutex
	pending *snapshot
	written uint64
	lastErr error
	settled chan struct{}

	wake chan struct{}
	quit chan struct{}
	done chan struct{}
}

func newWriter(kv KV, key string, onErr func(error)) *writer {
	w := &writer{
		kv:      kv,
		key:     key,
		onErr:   onErr,
		settled: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) enqueue(gen uint64, data string) {
	w.mu.Lock()
	w.pending = &snapshot{gen: gen, data: data}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		snap := w.pending
		w.pending = nil
		w.mu.Unlock()
		if snap == nil {
			return
		}

		err := w.kv.Set(context.Background(), w.key, snap.data)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrPersistence, err)
		}

		w.mu.Lock()
		w.written = snap.gen
		w.lastErr = err
		close(w.settled)
		w.settled = make(chan struct{})
		w.mu.Unlock()

		if err != nil && w.onErr != nil {
			w.onErr(err)
		}
	}
}

// wait blocks until a snapshot at least as new as gen has been written, and
// returns the outcome of that write.
func (w *writer) wait(ctx context.Context, gen uint64) error {
	for {
		w.mu.Lock()
		if w.written >= gen {
			err := w.lastErr
			w.mu.Unlock()
			return err
		}
		ch := w.settled
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// close writes whatever is still pending and stops the goroutine.
func (w *writer) close(ctx context.Context) error {
	close(w.quit)
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}
