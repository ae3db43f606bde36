package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LakGar/Lumina-sub000/ai/mock"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
	storagebadger "github.com/LakGar/Lumina-sub000/storage/badger"
	"github.com/LakGar/Lumina-sub000/vector"
	vectorbadger "github.com/LakGar/Lumina-sub000/vector/badger"
)

type workerFixture struct {
	worker    *Worker
	entryRepo storage.EntryRepository
	ownerRepo storage.OwnerRepository
	index     vector.Index
	provider  *mock.MockProvider
	cleanup   func()
}

func newWorkerFixture(t *testing.T, opts ...Option) *workerFixture {
	t.Helper()

	entryRepo, ownerRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)

	worker, err := NewWorker(entryRepo, ownerRepo, index, provider, opts...)
	require.NoError(t, err)

	return &workerFixture{
		worker:    worker,
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

func (f *workerFixture) addOwner(t *testing.T, ownerID string, tier core.Tier, settings core.Settings) {
	t.Helper()
	_, err := f.ownerRepo.UpsertProfile(context.Background(), &core.OwnerProfile{
		OwnerID:  ownerID,
		Tier:     tier,
		Settings: settings,
	})
	require.NoError(t, err)
}

func (f *workerFixture) addEntry(t *testing.T, entryID, ownerID, rawText, voiceRef string) *core.ProcessingJob {
	t.Helper()
	_, err := f.entryRepo.AddEntries(context.Background(), &core.EntryRecord{
		EntryID:       entryID,
		OwnerID:       ownerID,
		RawText:       rawText,
		VoiceAssetRef: voiceRef,
	})
	require.NoError(t, err)
	return &core.ProcessingJob{
		EntryID:       entryID,
		OwnerID:       ownerID,
		RawText:       rawText,
		VoiceAssetRef: voiceRef,
	}
}

func TestWorkerProTierFullEnrichment(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{
		MemoryEnabled:  true,
		SummaryEnabled: true,
		MoodEnabled:    false,
	})

	// ~1800 characters, forcing at least two chunks.
	text := strings.Repeat("Spent the afternoon walking along the canal and thinking. ", 31)
	job := f.addEntry(t, "entry-1", "alice", text, "")

	require.NoError(t, f.worker.Process(ctx, job))

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)

	require.NotNil(t, record.Summary)
	assert.NotEmpty(t, *record.Summary)
	assert.NotEmpty(t, record.Tags)
	assert.Nil(t, record.Mood, "mood disabled in settings")
	require.True(t, len(record.ChunkTexts) >= 2, "expected the long entry to split")

	// Vector records carry the stable ownerID:entryID:chunkIndex IDs.
	queryVec, err := f.provider.GetMockEmbedder().EmbedText(ctx, record.ChunkTexts[0])
	require.NoError(t, err)
	matches, err := f.index.Query(ctx, "alice", queryVec, 10, vector.Filter{Kind: vector.KindJournalChunk})
	require.NoError(t, err)
	require.Len(t, matches, len(record.ChunkTexts))
	assert.Equal(t, vector.RecordID("alice", "entry-1", 0), matches[0].ID)
}

func TestWorkerFreeTierVoiceEntry(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "bob", core.TierFree, core.Settings{
		MemoryEnabled:  true, // toggle on, but the free tier denies ai_memory
		SummaryEnabled: false,
		MoodEnabled:    false,
	})

	job := f.addEntry(t, "entry-1", "bob", "", "https://assets.example/voice.m4a")

	require.NoError(t, f.worker.Process(ctx, job))

	// Transcription is gated on ai_memory, so the transcriber never runs.
	assert.Equal(t, 0, f.provider.GetMockTranscriber().CallCount())
	assert.Equal(t, 0, f.provider.GetMockEmbedder().CallCount())

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Empty(t, record.NormalizedText)
	assert.Nil(t, record.Summary)
	assert.Nil(t, record.Mood)
	assert.Empty(t, record.Tags)
	assert.Empty(t, record.ChunkTexts)

	matches, err := f.index.Query(ctx, "bob", []float32{1, 0, 0}, 10, vector.Filter{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestWorkerVoiceTranscription(t *testing.T) {
	f := newWorkerFixture(t, WithAssetFetcher(fetcherFunc(func(ctx context.Context, ref string) ([]byte, error) {
		return []byte("audio-bytes"), nil
	})))
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPremium, core.Settings{
		MemoryEnabled:  true,
		SummaryEnabled: true,
		MoodEnabled:    true,
	})

	job := f.addEntry(t, "entry-1", "alice", "", "https://assets.example/voice.m4a")

	require.NoError(t, f.worker.Process(ctx, job))

	assert.Equal(t, 1, f.provider.GetMockTranscriber().CallCount())

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.NotEmpty(t, record.NormalizedText, "transcript becomes the working text")
	require.NotNil(t, record.Mood)
	assert.Equal(t, "calm", *record.Mood)
	require.Len(t, record.ChunkTexts, 1)
}

func TestWorkerTranscriptionFailureKeepsPriorText(t *testing.T) {
	f := newWorkerFixture(t, WithAssetFetcher(fetcherFunc(func(ctx context.Context, ref string) ([]byte, error) {
		return nil, errors.New("asset service unavailable")
	})))
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{MemoryEnabled: true, SummaryEnabled: true})

	job := f.addEntry(t, "entry-1", "alice", "Typed fallback text.", "https://assets.example/voice.m4a")

	require.NoError(t, f.worker.Process(ctx, job), "transcription is best-effort")

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "Typed fallback text.", record.NormalizedText)
	require.NotNil(t, record.Summary)
}

func TestWorkerSubTaskFailureIsolated(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{
		MemoryEnabled:  true,
		SummaryEnabled: true,
		MoodEnabled:    true,
	})

	// Only the mood sub-task fails; summary and tags still land.
	f.provider.GetMockGenerator().CompleteFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		if strings.Contains(prompt, "mood") {
			return "", errors.New("model overloaded")
		}
		if strings.Contains(prompt, "tags") {
			return "walking, canal", nil
		}
		return "An afternoon by the water.", nil
	}

	job := f.addEntry(t, "entry-1", "alice", "Walked by the canal today. It was windy.", "")

	require.NoError(t, f.worker.Process(ctx, job))

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	require.NotNil(t, record.Summary)
	assert.Equal(t, []string{"walking", "canal"}, record.Tags)
	assert.Nil(t, record.Mood)
	assert.NotEmpty(t, record.ChunkTexts)
}

func TestWorkerInvalidMoodLabel(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{MoodEnabled: true})

	f.provider.GetMockGenerator().CompleteFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "melancholic but hopeful, I think", nil
	}

	job := f.addEntry(t, "entry-1", "alice", "A strange day.", "")

	require.NoError(t, f.worker.Process(ctx, job))

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Nil(t, record.Mood, "labels outside the closed set are dropped")
}

func TestWorkerEmbeddingFailureDegrades(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{MemoryEnabled: true, SummaryEnabled: true})

	f.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}

	job := f.addEntry(t, "entry-1", "alice", "Some text worth embedding.", "")

	require.NoError(t, f.worker.Process(ctx, job), "embedding failure degrades, not fails")

	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Empty(t, record.ChunkTexts)
	require.NotNil(t, record.Summary, "other sub-tasks unaffected")
}

func TestWorkerReprocessingOverwrites(t *testing.T) {
	f := newWorkerFixture(t, WithChunkSize(60))
	defer f.cleanup()

	ctx := context.Background()
	f.addOwner(t, "alice", core.TierPro, core.Settings{MemoryEnabled: true})

	longText := "First sentence for the entry. Second sentence for the entry. Third sentence for the entry."
	job := f.addEntry(t, "entry-1", "alice", longText, "")

	require.NoError(t, f.worker.Process(ctx, job))
	record, err := f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	firstCount := len(record.ChunkTexts)
	require.True(t, firstCount >= 2)

	// Re-running the identical job reproduces the same IDs, so the index
	// holds exactly one record per chunk.
	require.NoError(t, f.worker.Process(ctx, job))
	queryVec, err := f.provider.GetMockEmbedder().EmbedText(ctx, record.ChunkTexts[0])
	require.NoError(t, err)
	matches, err := f.index.Query(ctx, "alice", queryVec, 100, vector.Filter{})
	require.NoError(t, err)
	assert.Len(t, matches, firstCount)

	// Shrinking the text clears the stale trailing vectors.
	job.RawText = "Just one short sentence now."
	require.NoError(t, f.worker.Process(ctx, job))

	matches, err = f.index.Query(ctx, "alice", queryVec, 100, vector.Filter{})
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	record, err = f.entryRepo.GetEntry(ctx, "entry-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Just one short sentence now."}, record.ChunkTexts)
}

func TestWorkerValidation(t *testing.T) {
	f := newWorkerFixture(t)
	defer f.cleanup()

	ctx := context.Background()

	err := f.worker.Process(ctx, &core.ProcessingJob{OwnerID: "alice"})
	assert.ErrorIs(t, err, core.ErrInvalidJob)

	err = f.worker.Process(ctx, &core.ProcessingJob{EntryID: "entry-1", OwnerID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownOwner)
}

func TestNewWorkerRequiresDependencies(t *testing.T) {
	entryRepo, ownerRepo, backend, err := storagebadger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	index, err := vectorbadger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	provider := mock.NewMockProvider()

	_, err = NewWorker(nil, ownerRepo, index, provider)
	assert.ErrorIs(t, err, ErrEntryRepositoryRequired)

	_, err = NewWorker(entryRepo, nil, index, provider)
	assert.ErrorIs(t, err, ErrOwnerRepositoryRequired)

	_, err = NewWorker(entryRepo, ownerRepo, nil, provider)
	assert.ErrorIs(t, err, ErrVectorIndexRequired)

	_, err = NewWorker(entryRepo, ownerRepo, index, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

// fetcherFunc adapts a function to the AssetFetcher interface.
type fetcherFunc func(ctx context.Context, ref string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}
