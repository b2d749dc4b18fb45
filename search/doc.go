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

// Package search implements keyword search over a pricing corpus.
//
// A query is first classified into an intent (pricing, claiming,
// definition, both, or general) from phrase patterns, then dispatched to
// the sub-searches that intent selects. Candidates are collected through
// inverted indexes with OR semantics and scored per source type; the
// merged results are ranked by score with stable ordering for ties.
//
// The package also suggests query refinements: narrowing hints for broad
// result sets, prefix-based alternatives for empty ones, and a state hint
// when the query names no Australian state.
//
// Engines are read-only after construction and safe for concurrent use.
package search
