package service

import (
	"context"
	"sync"
	"time"

	"github.com/Slok9931/WriteStream/internal/ledger"
	"github.com/Slok9931/WriteStream/internal/middleware"
)

// EventSink receives batches of ledger events. Satisfied by
// repository.EventRepo.
type EventSink interface {
	InsertBatch(ctx context.Context, events []ledger.Event) error
}

// IndexWorker drains ledger notifications into the off-chain event
// index. Events are buffered and flushed in batches so a burst of
// transactions produces one database round trip. The index is an
// observer: a failed flush is retried on the next tick and never blocks
// the ledger.
type IndexWorker struct {
	events <-chan ledger.Event
	sink   EventSink
	every  time.Duration

	// Observe, when set, is called with each successfully flushed batch
	// size (wired to a prometheus histogram in main).
	Observe func(batch int)

	mu      sync.Mutex
	pending []ledger.Event
}

// NewIndexWorker creates a worker draining the given subscription.
func NewIndexWorker(events <-chan ledger.Event, sink EventSink, every time.Duration) *IndexWorker {
	return &IndexWorker{
		events: events,
		sink:   sink,
		every:  every,
	}
}

// Start consumes events and flushes batches until the context is
// cancelled, then performs a final flush.
func (w *IndexWorker) Start(ctx context.Context) {
	middleware.Logger.Info().Dur("batch_window", w.every).Msg("index-worker: starting")

	ticker := time.NewTicker(w.every)
	defer ticker.Stop()

	for {
		select {
		case ev := <-w.events:
			w.mu.Lock()
			w.pending = append(w.pending, ev)
			w.mu.Unlock()
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			w.drain()
			w.flush(context.Background())
			middleware.Logger.Info().Msg("index-worker: stopped")
			return
		}
	}
}

// drain moves any events still queued on the channel into the buffer.
func (w *IndexWorker) drain() {
	for {
		select {
		case ev := <-w.events:
			w.mu.Lock()
			w.pending = append(w.pending, ev)
			w.mu.Unlock()
		default:
			return
		}
	}
}

// flush writes the buffered batch. On failure the batch is requeued so
// no event is lost while the database is down.
func (w *IndexWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	batch := w.pending
	w.pending = nil
	w.mu.Unlock()

	if err := w.sink.InsertBatch(ctx, batch); err != nil {
		middleware.Logger.Error().Err(err).Int("batch", len(batch)).Msg("index-worker: flush failed, requeueing")
		w.mu.Lock()
		w.pending = append(batch, w.pending...)
		w.mu.Unlock()
		return
	}

	if w.Observe != nil {
		w.Observe(len(batch))
	}
	middleware.Logger.Debug().Int("batch", len(batch)).Msg("index-worker: batch indexed")
}
