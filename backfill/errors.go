package backfill

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrEmbeddingMismatch is returned when the embedding service returns
	// a different number of vectors than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")
)
