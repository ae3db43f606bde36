package search

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/storage"
	"github.com/LakGar/Lumina-sub000/vector"
)

// candidateTopK bounds the chunk matches pulled from the index before they
// are collapsed to entries. Entries span multiple chunks, so this is
// deliberately much larger than a result page.
const candidateTopK = 256

// Filters narrows a search to a date window, tag set, and mood.
// Zero-valued fields are ignored.
type Filters struct {
	From time.Time
	To   time.Time
	Tags []string
	Mood string
}

// Result is one entry in a result page with its relevance score.
// Keyword-path results carry a constant score of 1.0.
type Result struct {
	Entry *core.EntryRecord
	Score float32
}

// Page is one page of search results plus the total match count across
// all pages.
type Page struct {
	Results []Result
	Total   int
}

// Searcher retrieves an owner's entries by meaning when their plan allows
// it, and by keyword otherwise. A semantic query that cannot execute falls
// back to the keyword path instead of failing, so the caller always gets
// the same result shape.
type Searcher struct {
	entryRepository storage.EntryRepository
	ownerRepository storage.OwnerRepository
	index           vector.Index
	embedder        ai.Embedder
	logger          *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	entryRepository storage.EntryRepository,
	ownerRepository storage.OwnerRepository,
	index vector.Index,
	provider ai.Provider,
	opts ...Option,
) (*Searcher, error) {
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

	s := &Searcher{
		entryRepository: entryRepository,
		ownerRepository: ownerRepository,
		index:           index,
		embedder:        provider.Embedder(),
		logger:          slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns one page of the owner's entries matching the query and
// filters. Pages are 1-based; page values below 1 mean the first page.
func (s *Searcher) Search(ctx context.Context, ownerID, query string, filters Filters, page, limit int) (*Page, error) {
	return s.SearchWithMonitor(ctx, ownerID, query, filters, page, limit, nil)
}

// SearchWithMonitor is Search with stage callbacks for observation.
func (s *Searcher) SearchWithMonitor(ctx context.Context, ownerID, query string, filters Filters, page, limit int, monitor SearchMonitor) (*Page, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if ownerID == "" {
		return nil, ErrEmptyOwnerID
	}
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}

	monitor.Start(ownerID, query)

	cctx, err := s.resolveCapabilities(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if core.Allowed(cctx, core.FeatureSemanticSearch) {
		monitor.ChosePath(PathSemantic)
		result, err := s.semanticSearch(ctx, ownerID, query, filters, page, limit, monitor)
		if err == nil {
			monitor.Finish(result)
			return result, nil
		}
		// The semantic path degrades rather than fails; keyword search
		// answers the query either way.
		s.logger.Warn("semantic search failed, falling back to keyword path", "owner", ownerID, "err", err)
		monitor.FellBack(err)
	}

	monitor.ChosePath(PathKeyword)
	result, err := s.keywordSearch(ctx, ownerID, query, filters, page, limit)
	if err != nil {
		return nil, err
	}
	monitor.Finish(result)
	return result, nil
}

// resolveCapabilities loads the owner's capability context. An owner with
// no stored profile searches with free-tier defaults.
func (s *Searcher) resolveCapabilities(ctx context.Context, ownerID string) (core.CapabilityContext, error) {
	profile, err := s.ownerRepository.GetProfile(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("no profile for owner, using defaults", "owner", ownerID)
			return core.CapabilityContext{Tier: core.TierFree}, nil
		}
		return core.CapabilityContext{}, err
	}
	return profile.Capabilities(), nil
}

// semanticSearch embeds the query, collapses chunk matches to entries by
// best score, applies the filters in memory, and paginates.
func (s *Searcher) semanticSearch(ctx context.Context, ownerID, query string, filters Filters, page, limit int, monitor SearchMonitor) (*Page, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := s.index.Query(ctx, ownerID, vector.Normalize(embedding), candidateTopK, vector.Filter{Kind: vector.KindJournalChunk})
	if err != nil {
		return nil, err
	}
	monitor.AfterVectorQuery(matches)

	// Collapse chunk matches to entries, keeping the best chunk score per
	// entry. Matches arrive in descending score order, so the first hit
	// for an entry is its best and ordering is preserved.
	bestScores := make(map[string]float32)
	var entryIDs []string
	for _, match := range matches {
		entryID := match.Metadata.EntryID
		if _, seen := bestScores[entryID]; seen {
			continue
		}
		bestScores[entryID] = match.Score
		entryIDs = append(entryIDs, entryID)
	}

	if len(entryIDs) == 0 {
		return &Page{Results: []Result{}, Total: 0}, nil
	}

	records, err := s.entryRepository.GetEntries(ctx, entryIDs...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*core.EntryRecord, len(records))
	for _, record := range records {
		byID[record.EntryID] = record
	}

	// Walk in score order, keeping only records that pass the filters.
	var filtered []Result
	for _, entryID := range entryIDs {
		record, ok := byID[entryID]
		if !ok || !matchesFilters(record, filters) {
			continue
		}
		filtered = append(filtered, Result{Entry: record, Score: bestScores[entryID]})
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	results := filtered[start:end]
	if results == nil {
		results = []Result{}
	}
	return &Page{Results: results, Total: total}, nil
}

// keywordSearch pushes the query and filters down into the entry store.
func (s *Searcher) keywordSearch(ctx context.Context, ownerID, query string, filters Filters, page, limit int) (*Page, error) {
	records, total, err := s.entryRepository.ListEntries(ctx, ownerID, storage.ListQuery{
		Text:   query,
		From:   filters.From,
		To:     filters.To,
		Tags:   filters.Tags,
		Mood:   filters.Mood,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(records))
	for i, record := range records {
		results[i] = Result{Entry: record, Score: 1.0}
	}
	return &Page{Results: results, Total: total}, nil
}

// matchesFilters applies the date, tag, and mood filters to one record.
func matchesFilters(record *core.EntryRecord, filters Filters) bool {
	if !filters.From.IsZero() && record.CreatedAt.Before(filters.From) {
		return false
	}
	if !filters.To.IsZero() && !record.CreatedAt.Before(filters.To) {
		return false
	}
	for _, tag := range filters.Tags {
		if !slices.Contains(record.Tags, tag) {
			return false
		}
	}
	if filters.Mood != "" {
		if record.Mood == nil || *record.Mood != filters.Mood {
			return false
		}
	}
	return true
}
