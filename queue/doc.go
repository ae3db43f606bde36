// Package queue delivers enrichment jobs to the worker with
// at-least-once semantics.
//
// The in-process MemoryQueue dispatches deliveries to a bounded worker
// pool, absorbs duplicate enqueues of identical pending payloads, and
// redelivers failed jobs with exponential backoff before dropping them.
// Jobs failing permanently (invalid payload, access denied) are never
// redelivered.
package queue
