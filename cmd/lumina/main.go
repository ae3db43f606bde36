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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	lumina "github.com/LakGar/Lumina-sub000"
	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/backfill"
	"github.com/LakGar/Lumina-sub000/core"
	"github.com/LakGar/Lumina-sub000/queue"
	"github.com/LakGar/Lumina-sub000/search"
)

func main() {
	app := &cli.App{
		Name:  "lumina",
		Usage: "Journal enrichment and retrieval service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "worker",
				Usage:  "Re-enrich every stored entry through the processing queue",
				Action: workerCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "OpenAI-compatible service host URL for all AI services",
						Value: "http://localhost:11434/v1",
					},
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Number of jobs processed in parallel",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum delivery attempts per job",
						Value: 3,
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search an owner's journal entries",
				ArgsUsage: "QUERY...",
				Action:    searchCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:     "owner",
						Aliases:  []string{"o"},
						Usage:    "Owner whose entries to search",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "ai-host",
						Usage: "OpenAI-compatible service host URL for all AI services",
						Value: "http://localhost:11434/v1",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.StringFlag{
						Name:  "mood",
						Usage: "Only return entries with this mood label",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Only return entries carrying this tag (repeatable)",
					},
				),
			},
			{
				Name:   "backfill",
				Usage:  "Rewrite vector records for all entries with new embeddings",
				Action: backfillCommand,
				Flags: append(dbFlags(),
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to database directory",
			Required: true,
		},
	}
}

func workerCommand(c *cli.Context) error {
	ctx := context.Background()

	journal, err := lumina.Open(c.String("db"), lumina.WithAIConfig(ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
	)))
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	worker, err := journal.NewWorker()
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	q, err := journal.NewQueue(queue.WithMaxAttempts(c.Int("max-attempts")))
	if err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}

	err = q.Consume(worker.Process, c.Int("concurrency"))
	if err != nil {
		return fmt.Errorf("failed to start consumers: %w", err)
	}

	entries, err := journal.EntryRepository().AllEntries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}

	for _, entry := range entries {
		err := q.Enqueue(ctx, &core.ProcessingJob{
			EntryID:       entry.EntryID,
			OwnerID:       entry.OwnerID,
			RawText:       entry.RawText,
			VoiceAssetRef: entry.VoiceAssetRef,
		})
		if err != nil {
			return fmt.Errorf("failed to enqueue entry %s: %w", entry.EntryID, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Enqueued %d entries\n", len(entries))

	if err := q.Shutdown(ctx); err != nil {
		return fmt.Errorf("queue shutdown failed: %w", err)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("a search query is required")
	}

	journal, err := lumina.Open(c.String("db"), lumina.WithAIConfig(ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
	)))
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	searcher, err := journal.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	filters := search.Filters{
		Tags: c.StringSlice("tag"),
		Mood: c.String("mood"),
	}

	page, err := searcher.Search(ctx, c.String("owner"), query, filters, 1, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d entries (%d total)\n", len(page.Results), page.Total)
	for i, hit := range page.Results {
		text := hit.Entry.NormalizedText
		if text == "" {
			text = hit.Entry.RawText
		}
		fmt.Printf("%d: '%s' (%s)[%0.3f]\n", i, text, hit.Entry.EntryID, hit.Score)
	}
	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	journal, err := lumina.Open(c.String("db"), lumina.WithAIConfig(ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)))
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer journal.Close()

	config := &backfill.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	backfiller := journal.NewBackfiller(config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := backfiller.Run(ctx); err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
