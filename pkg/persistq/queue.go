package persistq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dissmar/storefront-backend/pkg/logger"
)

// ErrClosed is resolved into receipts enqueued after shutdown.
var ErrClosed = errors.New("persistq: queue closed")

const (
	defaultBuffer       = 64
	defaultWriteTimeout = 15 * time.Second
)

// WriteFunc persists one full snapshot.
type WriteFunc func(ctx context.Context) error

// Receipt reports the outcome of a single enqueued write. The in-memory
// mutation has already happened by the time a receipt exists; the receipt is
// a side channel, never a rollback trigger.
type Receipt struct {
	done chan struct{}
	err  error
}

func newReceipt() *Receipt {
	return &Receipt{done: make(chan struct{})}
}

func (r *Receipt) resolve(err error) {
	r.err = err
	close(r.done)
}

// Wait blocks until the write commits or ctx expires.
func (r *Receipt) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done exposes the completion channel.
func (r *Receipt) Done() <-chan struct{} {
	return r.done
}

// Err returns the outcome; only meaningful after Done is closed.
func (r *Receipt) Err() error {
	return r.err
}

type job struct {
	label   string
	fn      WriteFunc
	receipt *Receipt
}

// Queue serializes snapshot writes for one session so persisted state always
// commits in mutation order. Mutations enqueue and return immediately.
type Queue struct {
	logg    *logger.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	jobs   chan job
	drain  chan struct{}
}

// Options configures a session write queue.
type Options struct {
	Logger       *logger.Logger
	Buffer       int
	WriteTimeout time.Duration
}

// New starts the queue worker.
func New(opts Options) *Queue {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	timeout := opts.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	q := &Queue{
		logg:    opts.Logger,
		timeout: timeout,
		jobs:    make(chan job, buffer),
		drain:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.drain)
	for j := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err := j.fn(ctx)
		cancel()
		if err != nil && q.logg != nil {
			wctx := q.logg.WithField(context.Background(), "write", j.label)
			q.logg.Warn(wctx, "persist.write_failed: "+err.Error())
		}
		j.receipt.resolve(err)
	}
}

// Enqueue schedules a snapshot write and returns its receipt. Writes commit
// strictly in enqueue order.
func (q *Queue) Enqueue(label string, fn WriteFunc) *Receipt {
	receipt := newReceipt()

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		receipt.resolve(ErrClosed)
		return receipt
	}
	q.jobs <- job{label: label, fn: fn, receipt: receipt}
	return receipt
}

// Close stops intake and waits for queued writes to drain or ctx to expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	select {
	case <-q.drain:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
