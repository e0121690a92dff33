package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/devstage/internal/store"
)

// writeTimeout bounds a single backend write.
const writeTimeout = 5 * time.Second

// persistQueue writes persisted documents to a backend from a background
// goroutine. Only the most recent pending document is kept: a burst of
// mutations collapses into one write.
//
// Write failures are logged and dropped. Nothing ever waits on the queue
// except Flush and Close.
type persistQueue struct {
	backend store.Backend
	key     string
	logger  *slog.Logger

	mu       sync.Mutex
	pending  []byte
	queued   uint64 // generation of the newest enqueued document
	written  uint64 // generation of the newest attempted write
	closed   bool
	signal   chan struct{} // Signals a pending document (buffered, size 1)
	progress chan struct{} // Closed and replaced after every write
	done     chan struct{}
}

func newPersistQueue(backend store.Backend, key string, logger *slog.Logger) *persistQueue {
	q := &persistQueue{
		backend:  backend,
		key:      key,
		logger:   logger,
		signal:   make(chan struct{}, 1),
		progress: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue replaces the pending document. Returns false once closed.
func (q *persistQueue) Enqueue(doc []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	q.pending = doc
	q.queued++

	// Non-blocking: a buffer of 1 coalesces signals
	select {
	case q.signal <- struct{}{}:
	default:
	}
	return true
}

func (q *persistQueue) run() {
	defer close(q.done)

	for range q.signal {
		for q.writeNext() {
		}
	}
}

// writeNext writes the pending document, if any. Reports whether a write
// was attempted.
func (q *persistQueue) writeNext() bool {
	q.mu.Lock()
	doc, gen := q.pending, q.queued
	q.pending = nil
	q.mu.Unlock()

	if doc == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	err := q.backend.Put(ctx, q.key, doc)
	cancel()
	if err != nil {
		q.logger.Warn("persist state failed", "key", q.key, "error", err)
	}

	q.mu.Lock()
	q.written = gen
	close(q.progress)
	q.progress = make(chan struct{})
	q.mu.Unlock()
	return true
}

// Flush blocks until every document enqueued before the call has been
// written (or its write has failed), or ctx is done.
func (q *persistQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	target := q.queued
	q.mu.Unlock()

	for {
		q.mu.Lock()
		if q.written >= target {
			q.mu.Unlock()
			return nil
		}
		wait := q.progress
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		case <-q.done:
			return nil
		}
	}
}

// Close stops accepting documents and waits for the pending one to be
// written. Safe to call more than once.
func (q *persistQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.signal) // run drains then exits
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return nil
	}
}
