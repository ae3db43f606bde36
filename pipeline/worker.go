package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
	"github.com/LakGar/Lumina-sub000/vector"
)

// Worker processes enrichment jobs end to end: validate, resolve the
// owner's capabilities, normalize, run the generative sub-tasks and the
// chunk/embed step concurrently, then persist the result in a single
// terminal write.
//
// Worker retries nothing itself; a returned error hands the job back to
// the queue's redelivery policy. Sub-task and embedding failures are
// isolated and degrade the result instead of failing the job.
type Worker struct {
	entryRepository storage.EntryRepository
	ownerRepository storage.OwnerRepository
	normalizer      *normalizer
	enricher        *enrichmentGenerator
	embedWriter     *embeddingWriter
	chunkSize       int
	logger          *slog.Logger
}

// Option configures a Worker.
type Option func(*Worker) error

// WithChunkSize sets the chunk bound in characters.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(w *Worker) error {
		if size < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", size)
		}
		w.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// WithAssetFetcher sets the fetcher used to download voice assets.
// Default is an HTTP fetcher with a 30 second timeout.
func WithAssetFetcher(fetcher AssetFetcher) Option {
	return func(w *Worker) error {
		w.normalizer.fetcher = fetcher
		return nil
	}
}

// NewWorker creates an enrichment worker.
func NewWorker(
	entryRepository storage.EntryRepository,
	ownerRepository storage.OwnerRepository,
	index vector.Index,
	provider ai.Provider,
	opts ...Option,
) (*Worker, error) {
	if entryRepository == nil {
		return nil, ErrEntryRepositoryRequired
	}
	if ownerRepository == nil {
		return nil, ErrOwnerRepositoryRequired
	}
	if index == nil {
		return nil, ErrVectorIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	logger := slog.Default().With("component", "worker")

	w := &Worker{
		entryRepository: entryRepository,
		ownerRepository: ownerRepository,
		normalizer:      newNormalizer(provider.Transcriber(), NewHTTPAssetFetcher(nil), logger),
		enricher:        newEnrichmentGenerator(provider.Generator(), logger),
		embedWriter:     newEmbeddingWriter(index, provider.Embedder(), logger),
		chunkSize:       DefaultChunkSize,
		logger:          logger,
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Process runs the full enrichment pipeline for one job. Safe to call for
// the same job more than once: the terminal write and the vector upserts
// both overwrite the previous run's output.
func (w *Worker) Process(ctx context.Context, job *core.ProcessingJob) error {
	if err := core.ValidateProcessingJob(job); err != nil {
		return err
	}

	logger := w.logger.With("entry", job.EntryID, "owner", job.OwnerID)
	logger.Info("processing entry")

	// Capabilities are resolved fresh for every job so a tier or settings
	// change applies to the next run without any cache to invalidate.
	profile, err := w.ownerRepository.GetProfile(ctx, job.OwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownOwner, job.OwnerID)
		}
		return err
	}
	cctx := profile.Capabilities()

	text := w.normalizer.normalize(ctx, job, cctx)

	var (
		wg         sync.WaitGroup
		summary    *string
		tags       []string
		mood       *string
		chunkTexts []string
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, tags, mood = w.enricher.generate(ctx, job.EntryID, text, cctx)
	}()
	go func() {
		defer wg.Done()
		chunkTexts = w.embedChunks(ctx, job, text, cctx, logger)
	}()
	wg.Wait()

	enriched := &core.EnrichedEntry{
		NormalizedText: text,
		Summary:        summary,
		Tags:           tags,
		Mood:           mood,
		ChunkTexts:     chunkTexts,
	}

	// The single terminal write. Everything before this point only
	// touched the vector index, which a re-run fully overwrites.
	if _, err := w.entryRepository.ApplyEnrichment(ctx, job.EntryID, enriched); err != nil {
		return err
	}

	logger.Info("entry processed",
		"chunks", len(chunkTexts),
		"summary", summary != nil,
		"tags", len(tags),
		"mood", mood != nil)
	return nil
}

// embedChunks runs the gated chunk/embed step. Denied or failed embedding
// yields a nil chunk set; failures degrade the entry rather than fail the
// job.
func (w *Worker) embedChunks(ctx context.Context, job *core.ProcessingJob, text string, cctx core.CapabilityContext, logger *slog.Logger) []string {
	if !core.Allowed(cctx, core.FeatureAIMemory) {
		logger.Debug("skipping embeddings", "reason", "ai_memory denied")
		return nil
	}

	chunks := ChunkText(text, w.chunkSize)
	if err := w.embedWriter.write(ctx, job.OwnerID, job.EntryID, chunks); err != nil {
		logger.Error("error writing embeddings", "err", err)
		return nil
	}

	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}
