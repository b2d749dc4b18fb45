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


// Package ai provides abstractions for the AI services used by the PAPL
// retrieval subsystem.
//
// This package defines interfaces for text embeddings and answer generation.
// It follows the dependency inversion principle, allowing the retrieval and
// RAG logic to depend on abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Generator: Produces answer text from an assembled prompt
//   - Provider: Aggregates AI services for convenient initialization
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Error Taxonomy
//
// Provider failures are never silently swallowed: a silently-empty answer
// would be indistinguishable from "no information exists", which is a
// different, user-meaningful outcome. Implementations wrap transport errors
// in ErrEmbeddingService or ErrGenerationService so callers can match with
// errors.Is and give distinct guidance for each failure mode.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "occupational therapy")
//	answer, err := provider.Generator().GenerateAnswer(ctx, prompt, 2000)
package ai
