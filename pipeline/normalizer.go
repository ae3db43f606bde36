/*
 * Copyright 2025 Lumina Systems
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/LakGar/Lumina-sub000/ai"
	"github.com/LakGar/Lumina-sub000/core"
)

// AssetFetcher retrieves the raw bytes of a stored media asset by its
// reference.
type AssetFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPAssetFetcher fetches assets whose references are HTTP(S) URLs.
type HTTPAssetFetcher struct {
	client *http.Client
}

var _ AssetFetcher = (*HTTPAssetFetcher)(nil)

// NewHTTPAssetFetcher creates an HTTPAssetFetcher. A nil client gets a
// default with a 30 second timeout.
func NewHTTPAssetFetcher(client *http.Client) *HTTPAssetFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPAssetFetcher{client: client}
}

// Fetch downloads the asset at the given URL.
func (f *HTTPAssetFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// normalizer turns a job's raw content into the working text the rest of
// the pipeline consumes.
type normalizer struct {
	transcriber ai.Transcriber
	fetcher     AssetFetcher
	logger      *slog.Logger
}

func newNormalizer(transcriber ai.Transcriber, fetcher AssetFetcher, logger *slog.Logger) *normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &normalizer{
		transcriber: transcriber,
		fetcher:     fetcher,
		logger:      logger.With("processor", "normalizer"),
	}
}

// normalize produces the working text for a job. Text entries pass through
// as-is. For voice entries with ai_memory granted, the asset is fetched
// and transcribed and the transcript replaces the working text.
// Transcription is best-effort: any failure or empty transcript logs and
// keeps the prior text.
func (n *normalizer) normalize(ctx context.Context, job *core.ProcessingJob, cctx core.CapabilityContext) string {
	text := job.RawText

	if job.VoiceAssetRef == "" {
		return text
	}
	if !core.Allowed(cctx, core.FeatureAIMemory) {
		n.logger.Debug("skipping transcription", "entry", job.EntryID, "reason", "ai_memory denied")
		return text
	}
	if n.transcriber == nil || n.fetcher == nil {
		n.logger.Warn("skipping transcription", "entry", job.EntryID, "reason", "transcription not configured")
		return text
	}

	audio, err := n.fetcher.Fetch(ctx, job.VoiceAssetRef)
	if err != nil {
		n.logger.Error("error fetching voice asset", "entry", job.EntryID, "err", err)
		return text
	}

	transcript, err := n.transcriber.Transcribe(ctx, audio)
	if err != nil {
		n.logger.Error("error transcribing voice asset", "entry", job.EntryID, "err", err)
		return text
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		n.logger.Warn("empty transcript, keeping prior text", "entry", job.EntryID)
		return text
	}

	return transcript
}
