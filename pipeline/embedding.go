package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/vector"
)

// embeddingWriter embeds entry chunks and writes them to the vector index.
type embeddingWriter struct {
	index    vector.Index
	embedder ai.Embedder
	logger   *slog.Logger
}

func newEmbeddingWriter(index vector.Index, embedder ai.Embedder, logger *slog.Logger) *embeddingWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingWriter{
		index:    index,
		embedder: embedder,
		logger:   logger.With("processor", "embeddings"),
	}
}

// write embeds all chunks in one batched call and upserts them into the
// owner's namespace, clearing the entry's previous records first so a
// shrinking chunk count leaves no stale vectors behind. The step is
// all-or-nothing for the entry: any failure returns an error and writes
// nothing.
func (w *embeddingWriter) write(ctx context.Context, ownerID, entryID string, chunks []core.TextChunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var embeddings [][]float32
	if len(texts) > 0 {
		var err error
		embeddings, err = w.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(embeddings) != len(chunks) {
			return fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(chunks), len(embeddings))
		}
	}

	removed, err := w.index.DeletePrefix(ctx, ownerID, vector.EntryPrefix(ownerID, entryID))
	if err != nil {
		return err
	}
	if removed > 0 {
		w.logger.Debug("cleared previous vectors", "entry", entryID, "removed", removed)
	}

	if len(chunks) == 0 {
		return nil
	}

	records := make([]vector.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vector.Record{
			ID:     vector.RecordID(ownerID, entryID, chunk.Index),
			Vector: vector.Normalize(embeddings[i]),
			Metadata: vector.Metadata{
				OwnerID:    ownerID,
				EntryID:    entryID,
				ChunkIndex: chunk.Index,
				Text:       chunk.Text,
				Kind:       vector.KindJournalChunk,
			},
		}
	}

	return w.index.Upsert(ctx, ownerID, records)
}
