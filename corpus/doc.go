// Copyright 2025 Poiesic Systems
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


// Package corpus builds the retrievable document corpus from the three
// converted PAPL data sources: support item pricing records (JSON),
// claiming rules (YAML), and guidance text (Markdown).
//
// Each source contributes one kind of document chunk:
//
//   - pricing: one document per support item, with a synthesized summary
//     of its number, category, unit, and per-state price limits
//   - rule: one document per claiming rule, with its structure rendered
//     as YAML
//   - guidance: one document per heading-delimited section of the
//     guidance text
//
// The corpus is built once per dataset version and never mutated, apart
// from embedding vectors attached later by the RAG retriever. Chunk ids
// derive deterministically from source keys, so rebuilding from unchanged
// input yields an identical corpus.
package corpus
