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


// Package openai implements the ai interfaces against OpenAI-compatible
// HTTP APIs (OpenAI itself, Ollama, LocalAI, vLLM, and similar servers).
//
// Embeddings and completions go through langchaingo's openai client; audio
// transcription uses the go-openai client directly, since langchaingo does
// not expose the audio endpoints.
package openai
