package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/vector"
)

// BatchProcessor re-embeds the persisted chunk texts of entry batches and
// rewrites their vector index records.
type BatchProcessor struct {
	index          vector.Index
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(index vector.Index, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds one batch of entries. Entries without persisted chunk
// texts have nothing in the index and are skipped. All chunk texts in the
// batch go to the embedding service in a single call; each entry's index
// records are then cleared and rewritten.
// Returns the number of entries whose vectors were rewritten.
func (bp *BatchProcessor) Process(ctx context.Context, entries []*core.EntryRecord) (int, error) {
	var (
		texts   []string
		offsets = make(map[string]int)
		embed   []*core.EntryRecord
	)
	for _, entry := range entries {
		if len(entry.ChunkTexts) == 0 {
			continue
		}
		offsets[entry.EntryID] = len(texts)
		texts = append(texts, entry.ChunkTexts...)
		embed = append(embed, entry)
	}

	if len(embed) == 0 {
		return 0, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(texts), len(embeddings))
	}

	for _, entry := range embed {
		offset := offsets[entry.EntryID]

		records := make([]vector.Record, len(entry.ChunkTexts))
		for i, text := range entry.ChunkTexts {
			records[i] = vector.Record{
				ID:     vector.RecordID(entry.OwnerID, entry.EntryID, i),
				Vector: vector.Normalize(embeddings[offset+i]),
				Metadata: vector.Metadata{
					OwnerID:    entry.OwnerID,
					EntryID:    entry.EntryID,
					ChunkIndex: i,
					Text:       text,
					Kind:       vector.KindJournalChunk,
				},
			}
		}

		if _, err := bp.index.DeletePrefix(ctx, entry.OwnerID, vector.EntryPrefix(entry.OwnerID, entry.EntryID)); err != nil {
			return 0, fmt.Errorf("failed to clear vectors for entry %s: %w", entry.EntryID, err)
		}
		if err := bp.index.Upsert(ctx, entry.OwnerID, records); err != nil {
			return 0, fmt.Errorf("failed to upsert vectors for entry %s: %w", entry.EntryID, err)
		}
	}

	return len(embed), nil
}
