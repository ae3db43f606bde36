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

package backfill

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
	"github.com/LakGar/Lumina-sub000/vector"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of entries to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of entries)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Backfiller re-embeds the persisted chunks of every entry in the store,
// used after switching embedding models so index vectors and query
// vectors come from the same model again.
type Backfiller struct {
	repo      storage.EntryRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *EntryIterator
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(repo storage.EntryRepository, index vector.Index, embedder ai.Embedder, config *Config, progress io.Writer) *Backfiller {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Backfiller{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(index, embedder, config.MaxRetries, config.RetryDelay),
		iterator:  NewEntryIterator(repo, config.BatchSize),
	}
}

// Run executes the backfill. Every entry with persisted chunk texts gets
// its vector records rewritten; entries without chunks are counted but
// untouched. Progress is reported to the configured writer.
func (b *Backfiller) Run(ctx context.Context) error {
	allEntries, err := b.repo.AllEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}

	totalEntries := len(allEntries)
	if totalEntries == 0 {
		fmt.Fprintf(b.progress, "No entries found in database (0 entries)\n")
		return nil
	}

	fmt.Fprintf(b.progress, "Starting re-embedding of %d entries (batch size: %d)\n",
		totalEntries, b.config.BatchSize)

	tracker := NewProgressTracker(b.progress, totalEntries, b.config.ReportInterval)
	tracker.Start()

	processed := 0
	rewritten := 0

	err = b.iterator.ForEach(ctx, func(entries []*core.EntryRecord) error {
		n, err := b.processor.Process(ctx, entries)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		rewritten += n
		processed += len(entries)
		tracker.Update(processed)
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(b.progress, "Re-embedding complete. Rewrote vectors for %d of %d entries in %v (%.1f entries/sec)\n",
		rewritten, totalEntries, elapsed.Round(time.Second), float64(totalEntries)/elapsed.Seconds())

	return nil
}
