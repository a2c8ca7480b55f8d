package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sink is the durable store entries are handed to, one at a time, in chain
// order. Implementations must store entries without modification.
type Sink interface {
	Persist(ctx context.Context, entry Entry) error
}

// sinkQueue decouples appends from durable writes. Entries flow through a
// buffered channel to a single writer goroutine which retries failed writes
// with linear backoff. Losing an audit entry defeats the log's purpose, so a
// drop after exhausted retries is logged loudly.
type sinkQueue struct {
	sink        Sink
	log         *zap.Logger
	ch          chan Entry
	done        chan struct{}
	maxAttempts int
	backoff     time.Duration
}

func newSinkQueue(sink Sink, buffer, maxAttempts int, backoff time.Duration, log *zap.Logger) *sinkQueue {
	if buffer <= 0 {
		buffer = 256
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	q := &sinkQueue{
		sink:        sink,
		log:         log,
		ch:          make(chan Entry, buffer),
		done:        make(chan struct{}),
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
	go q.run()
	return q
}

func (q *sinkQueue) enqueue(entry Entry) {
	select {
	case q.ch <- entry:
	default:
		// Queue full. Blocking here would stall business operations, which
		// logging must never do.
		q.log.Error("audit sink queue full, entry not persisted",
			zap.String("entry_id", entry.ID),
			zap.String("action", string(entry.Action)),
		)
	}
}

func (q *sinkQueue) run() {
	defer close(q.done)
	for entry := range q.ch {
		q.persistWithRetry(entry)
	}
}

func (q *sinkQueue) persistWithRetry(entry Entry) {
	var lastErr error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := q.sink.Persist(ctx, entry)
		cancel()
		if err == nil {
			return
		}
		lastErr = err
		time.Sleep(time.Duration(attempt) * q.backoff)
	}
	q.log.Error("audit entry dropped after retries",
		zap.String("entry_id", entry.ID),
		zap.Int("attempts", q.maxAttempts),
		zap.Error(lastErr),
	)
}

// close drains the queue and waits for the writer to finish.
func (q *sinkQueue) close() {
	close(q.ch)
	<-q.done
}
