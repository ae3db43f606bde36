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


// Package search provides capability-routed retrieval over journal
// entries.
//
// Owners whose plan grants semantic_search get the semantic path: the
// query is embedded, chunk matches from the owner's vector namespace are
// collapsed to entries by best score, and filters apply in memory. Every
// other owner, and any semantic query that fails to execute, takes the
// keyword path: a case-insensitive substring query pushed down into the
// entry store with recency ordering.
//
// Both paths return the same Page shape, so callers never see which one
// ran.
package search
