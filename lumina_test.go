package lumina

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LakGar/Lumina-sub000/ai/mock"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/search"
)

func TestOpen(t *testing.T) {
	t.Run("create new journal", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		journal, err := Open(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, journal)
		defer journal.Close()

		// Verify components are initialized
		assert.NotNil(t, journal.EntryRepository())
		assert.NotNil(t, journal.OwnerRepository())
		assert.NotNil(t, journal.VectorIndex())
		assert.NotNil(t, journal.backend)
		assert.NotNil(t, journal.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open a journal at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		journal, err := Open(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, journal)
	})
}

func TestJournal_Close(t *testing.T) {
	journal, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, journal)

	err = journal.Close()
	assert.NoError(t, err)
}

func TestJournal_FactoryMethods(t *testing.T) {
	journal, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	require.NotNil(t, journal)
	defer journal.Close()

	t.Run("can create worker", func(t *testing.T) {
		worker, err := journal.NewWorker()
		require.NoError(t, err)
		require.NotNil(t, worker)
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := journal.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create queue", func(t *testing.T) {
		q, err := journal.NewQueue()
		require.NoError(t, err)
		require.NotNil(t, q)
		require.NoError(t, q.Shutdown(context.Background()))
	})

	t.Run("can create backfiller", func(t *testing.T) {
		backfiller := journal.NewBackfiller(nil, nil)
		require.NotNil(t, backfiller)
	})
}

// End to end: enqueue an entry, let the worker enrich it through the
// queue, then retrieve it semantically.
func TestJournal_EnrichAndSearch(t *testing.T) {
	ctx := context.Background()

	journal, err := Open("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer journal.Close()

	_, err = journal.OwnerRepository().UpsertProfile(ctx, &core.OwnerProfile{
		OwnerID: "owner-1",
		Tier:    core.TierPro,
		Settings: core.Settings{
			MemoryEnabled:  true,
			SummaryEnabled: true,
			MoodEnabled:    true,
		},
	})
	require.NoError(t, err)

	entry := &core.EntryRecord{
		EntryID: "entry-1",
		OwnerID: "owner-1",
		RawText: "Spent the afternoon repotting the tomato seedlings on the balcony.",
	}
	_, err = journal.EntryRepository().AddEntries(ctx, entry)
	require.NoError(t, err)

	worker, err := journal.NewWorker()
	require.NoError(t, err)

	q, err := journal.NewQueue()
	require.NoError(t, err)

	done := make(chan struct{})
	err = q.Consume(func(ctx context.Context, job *core.ProcessingJob) error {
		defer close(done)
		return worker.Process(ctx, job)
	}, 1)
	require.NoError(t, err)

	err = q.Enqueue(ctx, &core.ProcessingJob{
		OwnerID: "owner-1",
		EntryID: "entry-1",
		RawText: entry.RawText,
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job to be processed")
	}
	require.NoError(t, q.Shutdown(ctx))

	enriched, err := journal.EntryRepository().GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	require.NotNil(t, enriched.Summary)
	require.NotEmpty(t, enriched.ChunkTexts)

	searcher, err := journal.NewSearcher()
	require.NoError(t, err)

	page, err := searcher.Search(ctx, "owner-1", "repotting the tomato seedlings", search.Filters{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "entry-1", page.Results[0].Entry.EntryID)
}
