/*
 * Copyright 2025 Lumina Systems
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/LakGar/Lumina-sub000/core"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 1 * time.Second
	defaultBufferSize  = 1024
)

// delivery is one attempt at getting a job through the handler.
type delivery struct {
	id          string
	fingerprint uint64
	job         *core.ProcessingJob
	attempt     int
}

// MemoryQueue is an in-process Queue backed by a buffered channel and a
// worker pool. Failed deliveries are redelivered with bounded exponential
// backoff; jobs failing with a permanent error (invalid payload, access
// denied) are dropped immediately.
type MemoryQueue struct {
	mu      sync.Mutex
	jobs    chan *delivery
	pending map[uint64]struct{}
	timers  map[string]*time.Timer
	closed  bool

	handler        Handler
	pool           *ants.Pool
	dispatcherDone chan struct{}
	inFlight       sync.WaitGroup

	maxAttempts int
	baseDelay   time.Duration
	bufferSize  int
	logger      *slog.Logger
}

var _ Queue = (*MemoryQueue)(nil)

// MemoryOption configures a MemoryQueue.
type MemoryOption func(*MemoryQueue) error

// WithMaxAttempts sets how many times a delivery is attempted before the
// job is dropped. Default is 3.
func WithMaxAttempts(attempts int) MemoryOption {
	return func(q *MemoryQueue) error {
		if attempts < 1 {
			attempts = 1
		}
		q.maxAttempts = attempts
		return nil
	}
}

// WithBaseDelay sets the first redelivery delay; each further attempt
// doubles it. Default is 1 second.
func WithBaseDelay(delay time.Duration) MemoryOption {
	return func(q *MemoryQueue) error {
		if delay <= 0 {
			delay = defaultBaseDelay
		}
		q.baseDelay = delay
		return nil
	}
}

// WithBufferSize sets the delivery buffer capacity. Default is 1024.
func WithBufferSize(size int) MemoryOption {
	return func(q *MemoryQueue) error {
		if size < 1 {
			size = 1
		}
		q.bufferSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) MemoryOption {
	return func(q *MemoryQueue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// NewMemoryQueue creates an in-process job queue.
func NewMemoryQueue(opts ...MemoryOption) (*MemoryQueue, error) {
	q := &MemoryQueue{
		pending:     make(map[uint64]struct{}),
		timers:      make(map[string]*time.Timer),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		bufferSize:  defaultBufferSize,
		logger:      slog.Default().With("component", "queue"),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	q.jobs = make(chan *delivery, q.bufferSize)
	return q, nil
}

// Enqueue submits a job. Enqueueing a payload identical to one already
// pending is absorbed without a second delivery; at-least-once processing
// makes the duplicate worthless.
func (q *MemoryQueue) Enqueue(ctx context.Context, job *core.ProcessingJob) error {
	if err := core.ValidateProcessingJob(job); err != nil {
		return err
	}

	fp := fingerprint(job)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if _, dup := q.pending[fp]; dup {
		q.logger.Debug("absorbing duplicate job", "entry", job.EntryID)
		return nil
	}

	d := &delivery{
		id:          uuid.NewString(),
		fingerprint: fp,
		job:         job,
		attempt:     1,
	}
	select {
	case q.jobs <- d:
		q.pending[fp] = struct{}{}
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume starts the dispatcher with a worker pool of the given size.
func (q *MemoryQueue) Consume(handler Handler, concurrency int) error {
	if handler == nil {
		return ErrHandlerRequired
	}
	if concurrency < 1 {
		concurrency = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.handler != nil {
		return ErrAlreadyConsuming
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return err
	}

	q.handler = handler
	q.pool = pool
	q.dispatcherDone = make(chan struct{})
	go q.dispatch()

	return nil
}

// dispatch feeds deliveries to the pool. Submit blocks when every worker
// is busy, which backpressures the channel rather than spawning work
// without bound.
func (q *MemoryQueue) dispatch() {
	defer close(q.dispatcherDone)
	for d := range q.jobs {
		d := d
		q.inFlight.Add(1)
		if err := q.pool.Submit(func() {
			defer q.inFlight.Done()
			q.process(d)
		}); err != nil {
			q.inFlight.Done()
			q.clearPending(d.fingerprint)
			q.logger.Error("error submitting delivery", "delivery", d.id, "err", err)
		}
	}
}

func (q *MemoryQueue) process(d *delivery) {
	logger := q.logger.With("delivery", d.id, "entry", d.job.EntryID, "attempt", d.attempt)

	err := q.handler(context.Background(), d.job)
	if err == nil {
		q.clearPending(d.fingerprint)
		logger.Debug("job processed")
		return
	}

	// Permanent failures are not worth redelivering.
	if errors.Is(err, core.ErrInvalidJob) || errors.Is(err, core.ErrAccessDenied) {
		q.clearPending(d.fingerprint)
		logger.Warn("dropping job", "err", err)
		return
	}

	if d.attempt >= q.maxAttempts {
		q.clearPending(d.fingerprint)
		logger.Error("dropping job after final attempt", "err", err)
		return
	}

	delay := q.baseDelay << (d.attempt - 1)
	logger.Warn("job failed, scheduling redelivery", "err", err, "delay", delay)
	q.scheduleRedelivery(d, delay)
}

func (q *MemoryQueue) scheduleRedelivery(d *delivery, delay time.Duration) {
	next := &delivery{
		id:          d.id,
		fingerprint: d.fingerprint,
		job:         d.job,
		attempt:     d.attempt + 1,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		delete(q.pending, d.fingerprint)
		return
	}

	q.timers[next.id] = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.timers, next.id)
		if q.closed {
			delete(q.pending, next.fingerprint)
			return
		}
		select {
		case q.jobs <- next:
		default:
			delete(q.pending, next.fingerprint)
			q.logger.Error("dropping redelivery, queue full", "entry", next.job.EntryID)
		}
	})
}

func (q *MemoryQueue) clearPending(fp uint64) {
	q.mu.Lock()
	delete(q.pending, fp)
	q.mu.Unlock()
}

// Shutdown stops intake, cancels pending redeliveries, and waits for
// in-flight deliveries to finish or the context to expire.
func (q *MemoryQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	close(q.jobs)
	dispatcherDone := q.dispatcherDone
	q.mu.Unlock()

	if dispatcherDone != nil {
		select {
		case <-dispatcherDone:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	drained := make(chan struct{})
	go func() {
		q.inFlight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}

	if q.pool != nil {
		q.pool.Release()
	}
	q.logger.Info("queue drained")
	return nil
}
