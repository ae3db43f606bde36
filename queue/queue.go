package queue

import (
	"context"

	"github.com/LakGar/Lumina-sub000/core"
)

// Handler processes one delivered job. A nil return acknowledges the
// delivery; an error hands it back to the queue's redelivery policy.
type Handler func(ctx context.Context, job *core.ProcessingJob) error

// Queue delivers enrichment jobs to a handler with at-least-once
// semantics. Implementations must be thread-safe.
type Queue interface {
	// Enqueue submits a job for processing. A job identical to one
	// already pending is silently absorbed.
	Enqueue(ctx context.Context, job *core.ProcessingJob) error

	// Consume starts dispatching deliveries to the handler on up to
	// concurrency workers. Consume may be called once.
	Consume(handler Handler, concurrency int) error

	// Shutdown stops intake, drains in-flight deliveries, and releases
	// resources. Pending redeliveries are dropped with a log line.
	Shutdown(ctx context.Context) error
}
