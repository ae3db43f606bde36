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


// Package ai provides abstractions for the external AI services the
// enrichment pipeline depends on.
//
// It defines interfaces for text embeddings, speech-to-text transcription,
// and text completion. The pipeline and retrieval packages depend only on
// these abstractions, never on concrete clients, so providers can be
// swapped and tests can run without external services.
//
// # Interfaces
//
//   - Embedder: generates vector embeddings from text
//   - Transcriber: converts recorded audio into text
//   - Generator: produces text completions (summaries, tags, mood labels)
//   - Provider: aggregates the three for initialization and lifecycle
//
// # Implementation Packages
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction. Test utility constructors
// (mock.NewMockEmbedder, mock.NewMockGenerator, ...) return CONCRETE types
// so tests can inject behavior and assert call counts.
//
// # Usage
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "a quiet morning")
package ai
