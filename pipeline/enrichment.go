package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
)

// Completion bounds per sub-task.
const (
	summaryMaxTokens = 256
	tagsMaxTokens    = 64
	moodMaxTokens    = 8

	summaryTemperature = 0.4
	tagsTemperature    = 0.2
	moodTemperature    = 0.0
)

// enrichmentGenerator runs the capability-gated generative sub-tasks:
// summary, tags, and mood. Sub-tasks run concurrently and fail
// independently; a failed or denied sub-task yields a null field, never a
// job error.
type enrichmentGenerator struct {
	generator ai.Generator
	logger    *slog.Logger
}

func newEnrichmentGenerator(generator ai.Generator, logger *slog.Logger) *enrichmentGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &enrichmentGenerator{
		generator: generator,
		logger:    logger.With("processor", "enrichment"),
	}
}

// generate runs the granted sub-tasks against the normalized text.
func (g *enrichmentGenerator) generate(ctx context.Context, entryID, text string, cctx core.CapabilityContext) (summary *string, tags []string, mood *string) {
	if strings.TrimSpace(text) == "" {
		return nil, nil, nil
	}

	var wg sync.WaitGroup

	if core.Allowed(cctx, core.FeatureSummaryGeneration) {
		wg.Add(2)
		go func() {
			defer wg.Done()
			summary = g.generateSummary(ctx, entryID, text)
		}()
		go func() {
			defer wg.Done()
			tags = g.generateTags(ctx, entryID, text)
		}()
	}

	if core.Allowed(cctx, core.FeatureMoodAnalysis) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mood = g.generateMood(ctx, entryID, text)
		}()
	}

	wg.Wait()
	return summary, tags, mood
}

func (g *enrichmentGenerator) generateSummary(ctx context.Context, entryID, text string) *string {
	response, err := g.generator.Complete(ctx, summaryPrompt(text), summaryMaxTokens, summaryTemperature)
	if err != nil {
		g.logger.Error("error generating summary", "entry", entryID, "err", err)
		return nil
	}
	response = strings.TrimSpace(response)
	if response == "" {
		g.logger.Warn("empty summary response", "entry", entryID)
		return nil
	}
	return &response
}

func (g *enrichmentGenerator) generateTags(ctx context.Context, entryID, text string) []string {
	response, err := g.generator.Complete(ctx, tagsPrompt(text), tagsMaxTokens, tagsTemperature)
	if err != nil {
		g.logger.Error("error generating tags", "entry", entryID, "err", err)
		return nil
	}

	tags := parseTags(response)
	if len(tags) == 0 {
		g.logger.Warn("no usable tags in response", "entry", entryID)
		return nil
	}
	return tags
}

func (g *enrichmentGenerator) generateMood(ctx context.Context, entryID, text string) *string {
	response, err := g.generator.Complete(ctx, moodPrompt(text, core.Moods), moodMaxTokens, moodTemperature)
	if err != nil {
		g.logger.Error("error classifying mood", "entry", entryID, "err", err)
		return nil
	}

	label := strings.ToLower(strings.TrimSpace(response))
	if !core.IsValidMood(label) {
		g.logger.Warn("mood response outside label set", "entry", entryID, "label", label)
		return nil
	}
	return &label
}

// parseTags splits a comma-separated tag response, trimming whitespace and
// dropping empty items.
func parseTags(response string) []string {
	var tags []string
	for _, part := range strings.Split(response, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
