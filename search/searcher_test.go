package search

import (
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

// recordingMonitor captures the stage callbacks for assertions.
type recordingMonitor struct {
	started    bool
	paths      []Path
	vectorHits int
	fellBack   bool
	finished   *Page
}

func (m *recordingMonitor) Start(_, _ string)                 { m.started = true }
func (m *recordingMonitor) ChosePath(path Path)               { m.paths = append(m.paths, path) }
func (m *recordingMonitor) AfterVectorQuery(h []vector.Match) { m.vectorHits = len(h) }
func (m *recordingMonitor) FellBack(_ error)                  { m.fellBack = true }
func (m *recordingMonitor) Finish(page *Page)                 { m.finished = page }

type searchFixture struct {
	searcher  *Searcher
	entryRepo storage.EntryRepository
	ownerRepo storage.OwnerRepository
	index     vector.Index
	provider  *mock.MockProvider
	cleanup   func()
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	entryRepo, ownerRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)

	searcher, err := NewSearcher(entryRepo, ownerRepo, index, provider)
	require.NoError(t, err)

	return &searchFixture{
		searcher:  searcher,
		entryRepo: entryRepo,
		ownerRepo: ownerRepo,
		index:     index,
		provider:  provider,
		cleanup: func() {
			index.Close()
			backend.Close()
		},
	}
}

func (f *searchFixture) addOwner(t *testing.T, ownerID string, tier core.Tier) {
	t.Helper()
	_, err := f.ownerRepo.UpsertProfile(context.Background(), &core.OwnerProfile{
		OwnerID:  ownerID,
		Tier:     tier,
		Settings: core.Settings{MemoryEnabled: true, SummaryEnabled: true, MoodEnabled: true},
	})
	require.NoError(t, err)
}

// addIndexedEntry stores an entry and upserts its text as a single
// embedded chunk, matching what the enrichment pipeline writes.
func (f *searchFixture) addIndexedEntry(t *testing.T, ownerID, entryID, text string, tags []string, mood string, createdAt time.Time) {
	t.Helper()
	ctx := context.Background()

	record := &core.EntryRecord{
		EntryID:        entryID,
		OwnerID:        ownerID,
		RawText:        text,
		NormalizedText: text,
		Tags:           tags,
		ChunkTexts:     []string{text},
		CreatedAt:      createdAt,
	}
	if mood != "" {
		record.Mood = &mood
	}
	_, err := f.entryRepo.AddEntries(ctx, record)
	require.NoError(t, err)

	embedding, err := f.provider.GetMockEmbedder().EmbedText(ctx, text)
	require.NoError(t, err)

	err = f.index.Upsert(ctx, ownerID, []vector.Record{{
		ID:     vector.RecordID(ownerID, entryID, 0),
		Vector: embedding,
		Metadata: vector.Metadata{
			OwnerID:    ownerID,
			EntryID:    entryID,
			ChunkIndex: 0,
			Text:       text,
			Kind:       vector.KindJournalChunk,
		},
	}})
	require.NoError(t, err)
}

func TestSearchSemanticPath(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	f.addOwner(t, "alice", core.TierPro)
	f.addIndexedEntry(t, "alice", "entry-1", "Hiked up the ridge before sunrise.", []string{"hiking"}, "excited", now.Add(-time.Hour))
	f.addIndexedEntry(t, "alice", "entry-2", "Quarterly budget review at the office.", []string{"work"}, "neutral", now)

	monitor := &recordingMonitor{}
	page, err := f.searcher.SearchWithMonitor(ctx, "alice", "Hiked up the ridge before sunrise.", Filters{}, 1, 10, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, []Path{PathSemantic}, monitor.paths)
	assert.False(t, monitor.fellBack)
	assert.Equal(t, 2, monitor.vectorHits)
	require.NotNil(t, monitor.finished)

	require.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	// The verbatim query ranks its own entry first.
	assert.Equal(t, "entry-1", page.Results[0].Entry.EntryID)
	assert.Greater(t, page.Results[0].Score, page.Results[1].Score)
}

func TestSearchFreeTierKeywordPath(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	f.addOwner(t, "bob", core.TierFree)
	f.addIndexedEntry(t, "bob", "entry-1", "Morning pages about the garden.", nil, "", now.Add(-time.Hour))
	f.addIndexedEntry(t, "bob", "entry-2", "Notes from the garden workshop.", nil, "", now)

	monitor := &recordingMonitor{}
	page, err := f.searcher.SearchWithMonitor(ctx, "bob", "garden", Filters{}, 1, 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, []Path{PathKeyword}, monitor.paths)
	require.Equal(t, 2, page.Total)
	require.Len(t, page.Results, 2)
	// Keyword results come newest first with a constant score.
	assert.Equal(t, "entry-2", page.Results[0].Entry.EntryID)
	for _, result := range page.Results {
		assert.Equal(t, float32(1.0), result.Score)
	}
}

func TestSearchSemanticFailureFallsBack(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro)
	f.addIndexedEntry(t, "alice", "entry-1", "Long walk in the rain.", nil, "", time.Now().UTC())

	f.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding service down")
	}

	monitor := &recordingMonitor{}
	page, err := f.searcher.SearchWithMonitor(ctx, "alice", "rain", Filters{}, 1, 10, monitor)
	require.NoError(t, err, "fallback keeps the search answerable")

	assert.True(t, monitor.fellBack)
	assert.Equal(t, []Path{PathSemantic, PathKeyword}, monitor.paths)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "entry-1", page.Results[0].Entry.EntryID)
	assert.Equal(t, float32(1.0), page.Results[0].Score)
}

func TestSearchSemanticFilters(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	f.addOwner(t, "alice", core.TierPremium)
	f.addIndexedEntry(t, "alice", "entry-1", "Dinner with old friends downtown.", []string{"friends", "food"}, "happy", now.Add(-72*time.Hour))
	f.addIndexedEntry(t, "alice", "entry-2", "Cooked dinner alone and read.", []string{"food"}, "calm", now.Add(-time.Hour))

	// Mood filter.
	page, err := f.searcher.Search(ctx, "alice", "dinner", Filters{Mood: "calm"}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "entry-2", page.Results[0].Entry.EntryID)

	// Tag filter requires every tag.
	page, err = f.searcher.Search(ctx, "alice", "dinner", Filters{Tags: []string{"friends", "food"}}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "entry-1", page.Results[0].Entry.EntryID)

	// Date window excludes the older entry.
	page, err = f.searcher.Search(ctx, "alice", "dinner", Filters{From: now.Add(-24 * time.Hour)}, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "entry-2", page.Results[0].Entry.EntryID)
}

func TestSearchPagination(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	now := time.Now().UTC()
	f.addOwner(t, "alice", core.TierPro)
	texts := []string{
		"Planted tomatoes in the garden bed.",
		"Weeded the garden after work.",
		"Watered the garden before breakfast.",
	}
	for i, text := range texts {
		f.addIndexedEntry(t, "alice", "entry-"+string(rune('a'+i)), text, nil, "", now.Add(time.Duration(i)*time.Minute))
	}

	first, err := f.searcher.Search(ctx, "alice", "garden", Filters{}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Total)
	assert.Len(t, first.Results, 2)

	second, err := f.searcher.Search(ctx, "alice", "garden", Filters{}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Total)
	assert.Len(t, second.Results, 1)

	// Pages never overlap.
	seen := map[string]bool{}
	for _, result := range append(first.Results, second.Results...) {
		assert.False(t, seen[result.Entry.EntryID])
		seen[result.Entry.EntryID] = true
	}

	// A page past the end is empty but keeps the total.
	third, err := f.searcher.Search(ctx, "alice", "garden", Filters{}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, third.Total)
	assert.Empty(t, third.Results)
}

func TestSearchUnknownOwnerDefaultsToKeyword(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	monitor := &recordingMonitor{}
	page, err := f.searcher.SearchWithMonitor(context.Background(), "ghost", "anything", Filters{}, 1, 10, monitor)
	require.NoError(t, err)
	assert.Equal(t, []Path{PathKeyword}, monitor.paths)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Results)
}

func TestSearchValidation(t *testing.T) {
	f := newSearchFixture(t)
	defer f.cleanup()

	_, err := f.searcher.Search(context.Background(), "", "query", Filters{}, 1, 10)
	assert.ErrorIs(t, err, ErrEmptyOwnerID)
}

func TestNewSearcherRequiresDependencies(t *testing.T) {
	entryRepo, ownerRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	provider := mock.NewMockProvider()

	_, err = NewSearcher(nil, ownerRepo, index, provider)
	assert.ErrorIs(t, err, ErrEntryRepositoryRequired)

	_, err = NewSearcher(entryRepo, nil, index, provider)
	assert.ErrorIs(t, err, ErrOwnerRepositoryRequired)

	_, err = NewSearcher(entryRepo, ownerRepo, nil, provider)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewSearcher(entryRepo, ownerRepo, index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}
