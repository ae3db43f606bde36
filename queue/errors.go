package queue

import "errors"

var (
	// ErrQueueClosed is returned when enqueueing after shutdown began.
	ErrQueueClosed = errors.New("queue closed")

	// ErrQueueFull is returned when the delivery buffer is at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrAlreadyConsuming is returned when Consume is called twice.
	ErrAlreadyConsuming = errors.New("queue already has a consumer")

	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("handler required")
)
