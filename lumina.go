// Copyright 2025 Lumina Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lumina

import (
	"io"
	"log/slog"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/ai/openai"
	"github.com/LakGar/Lumina-sub000/backfill"
	"github.com/LakGar/Lumina-sub000/pipeline"
	"github.com/LakGar/Lumina-sub000/queue"
	"github.com/LakGar/Lumina-sub000/search"
	"github.com/LakGar/Lumina-sub000/storage"
	storagebadger "github.com/LakGar/Lumina-sub000/storage/badger"
	"github.com/LakGar/Lumina-sub000/vector"
	vectorbadger "github.com/LakGar/Lumina-sub000/vector/badger"
)

// Journal bundles the stores, vector index, and AI provider behind one
// lifecycle. The entry store and vector index share a single embedded
// database.
type Journal struct {
	backend   *storagebadger.Backend
	entryRepo storage.EntryRepository
	ownerRepo storage.OwnerRepository
	index     vector.Index
	provider  ai.Provider
	logger    *slog.Logger
}

// JournalOption configures a Journal.
type JournalOption func(*journalOptions)

type journalOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI service configuration.
func WithAIConfig(config *ai.Config) JournalOption {
	return func(o *journalOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// one from config. Useful for tests.
func WithProvider(provider ai.Provider) JournalOption {
	return func(o *journalOptions) {
		o.provider = provider
	}
}

// WithInMemory keeps all storage in memory instead of on disk.
func WithInMemory() JournalOption {
	return func(o *journalOptions) {
		o.inMemory = true
	}
}

// Open opens (or creates) a journal database at filePath.
func Open(filePath string, opts ...JournalOption) (*Journal, error) {
	options := &journalOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := storagebadger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	entryRepo := storagebadger.NewEntryStore(backend)
	ownerRepo := storagebadger.NewOwnerStore(backend)
	index := vectorbadger.NewIndex(backend.DB())

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Journal{
		backend:   backend,
		entryRepo: entryRepo,
		ownerRepo: ownerRepo,
		index:     index,
		provider:  provider,
		logger:    slog.Default(),
	}, nil
}

// Close releases the AI provider and the underlying database.
func (j *Journal) Close() error {
	if err := j.provider.Close(); err != nil {
		j.logger.Error("error closing AI provider", "err", err)
	}

	// The index shares the backend's database; closing the backend
	// closes both.
	if err := j.backend.Close(); err != nil {
		j.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// EntryRepository returns the durable entry store.
func (j *Journal) EntryRepository() storage.EntryRepository {
	return j.entryRepo
}

// OwnerRepository returns the owner profile store.
func (j *Journal) OwnerRepository() storage.OwnerRepository {
	return j.ownerRepo
}

// VectorIndex returns the owner-namespaced vector index.
func (j *Journal) VectorIndex() vector.Index {
	return j.index
}

// NewWorker creates an enrichment worker over the journal's stores.
func (j *Journal) NewWorker(opts ...pipeline.Option) (*pipeline.Worker, error) {
	return pipeline.NewWorker(j.entryRepo, j.ownerRepo, j.index, j.provider, opts...)
}

// NewQueue creates an in-process job queue.
func (j *Journal) NewQueue(opts ...queue.MemoryOption) (*queue.MemoryQueue, error) {
	return queue.NewMemoryQueue(opts...)
}

// NewSearcher creates a retrieval service over the journal's stores.
func (j *Journal) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(j.entryRepo, j.ownerRepo, j.index, j.provider, opts...)
}

// NewBackfiller creates a re-embedding maintenance job.
// progress: where to write progress output (typically os.Stderr)
func (j *Journal) NewBackfiller(config *backfill.Config, progress io.Writer) *backfill.Backfiller {
	return backfill.NewBackfiller(j.entryRepo, j.index, j.provider.Embedder(), config, progress)
}
