// Package backfill re-embeds the persisted entry chunks after an
// embedding-model change.
//
// This package supports batch processing of entry records, progress
// tracking, and retry logic with exponential backoff. Vectors are
// normalized before writing so dot-product scoring stays equivalent to
// cosine similarity.
package backfill
