package backfill

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LakGar/Lumina-sub000/ai/mock"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
	storagebadger "github.com/LakGar/Lumina-sub000/storage/badger"
	"github.com/LakGar/Lumina-sub000/vector"
	vectorbadger "github.com/LakGar/Lumina-sub000/vector/badger"
)

func seedEntries(t *testing.T, repo storage.EntryRepository, count int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		id := string(rune('a' + i))
		_, err := repo.AddEntries(ctx, &core.EntryRecord{
			EntryID:    "entry-" + id,
			OwnerID:    "alice",
			RawText:    "entry text " + id,
			ChunkTexts: []string{"entry text " + id},
		})
		require.NoError(t, err)
	}
}

func TestBackfillerRun(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	seedEntries(t, entryRepo, 5)

	// One entry never had its chunks embedded and must be skipped.
	ctx := context.Background()
	_, err = entryRepo.AddEntries(ctx, &core.EntryRecord{
		EntryID: "entry-unembedded",
		OwnerID: "alice",
		RawText: "denied entry",
	})
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	var out bytes.Buffer

	backfiller := NewBackfiller(entryRepo, index, embedder, &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
	}, &out)

	require.NoError(t, backfiller.Run(ctx))

	// Every chunked entry's vector is queryable afterwards.
	queryVec, err := embedder.EmbedText(ctx, "entry text a")
	require.NoError(t, err)
	matches, err := index.Query(ctx, "alice", queryVec, 100, vector.Filter{Kind: vector.KindJournalChunk})
	require.NoError(t, err)
	assert.Len(t, matches, 5)

	assert.Contains(t, out.String(), "Re-embedding complete")
	assert.Contains(t, out.String(), "5 of 6 entries")
}

func TestBackfillerRunEmptyStore(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	var out bytes.Buffer
	backfiller := NewBackfiller(entryRepo, index, mock.NewMockEmbedder(), nil, &out)

	require.NoError(t, backfiller.Run(context.Background()))
	assert.Contains(t, out.String(), "No entries found")
}

func TestBackfillerReplacesStaleVectors(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	ctx := context.Background()
	_, err = entryRepo.AddEntries(ctx, &core.EntryRecord{
		EntryID:    "entry-1",
		OwnerID:    "alice",
		RawText:    "current text",
		ChunkTexts: []string{"current text"},
	})
	require.NoError(t, err)

	// A vector from a previous model, plus a stale trailing chunk.
	stale := []vector.Record{
		{
			ID:     vector.RecordID("alice", "entry-1", 0),
			Vector: []float32{1, 0, 0},
			Metadata: vector.Metadata{
				OwnerID: "alice", EntryID: "entry-1", ChunkIndex: 0,
				Text: "old text", Kind: vector.KindJournalChunk,
			},
		},
		{
			ID:     vector.RecordID("alice", "entry-1", 1),
			Vector: []float32{0, 1, 0},
			Metadata: vector.Metadata{
				OwnerID: "alice", EntryID: "entry-1", ChunkIndex: 1,
				Text: "old trailing chunk", Kind: vector.KindJournalChunk,
			},
		},
	}
	require.NoError(t, index.Upsert(ctx, "alice", stale))

	embedder := mock.NewMockEmbedder()
	var out bytes.Buffer
	backfiller := NewBackfiller(entryRepo, index, embedder, &Config{
		BatchSize: 10, ReportInterval: 10, MaxRetries: 1, RetryDelay: time.Millisecond,
	}, &out)

	require.NoError(t, backfiller.Run(ctx))

	queryVec, err := embedder.EmbedText(ctx, "current text")
	require.NoError(t, err)
	matches, err := index.Query(ctx, "alice", queryVec, 100, vector.Filter{})
	require.NoError(t, err)
	require.Len(t, matches, 1, "stale trailing vector cleared")
	assert.Equal(t, "current text", matches[0].Metadata.Text)
}

func TestBatchProcessorEmbeddingFailure(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	seedEntries(t, entryRepo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	var out bytes.Buffer
	backfiller := NewBackfiller(entryRepo, index, embedder, &Config{
		BatchSize: 10, ReportInterval: 10, MaxRetries: 2, RetryDelay: time.Millisecond,
	}, &out)

	err = backfiller.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch")
}

func TestEntryIteratorBatches(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedEntries(t, entryRepo, 5)

	iterator := NewEntryIterator(entryRepo, 2)

	var batches [][]*core.EntryRecord
	err = iterator.ForEach(context.Background(), func(batch []*core.EntryRecord) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
}

func TestEntryIteratorStopsOnError(t *testing.T) {
	entryRepo, _, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	seedEntries(t, entryRepo, 4)

	iterator := NewEntryIterator(entryRepo, 2)

	calls := 0
	batchErr := errors.New("batch failed")
	err = iterator.ForEach(context.Background(), func(batch []*core.EntryRecord) error {
		calls++
		return batchErr
	})
	assert.ErrorIs(t, err, batchErr)
	assert.Equal(t, 1, calls)
}
