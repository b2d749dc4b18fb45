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

// Package rag implements retrieval-augmented question answering over a
// pricing corpus.
//
// The Retriever embeds every corpus document once (batched on a worker
// pool, with retry and vector normalization) and ranks documents against
// a query embedding by cosine similarity. The Assistant retrieves the top
// matches, assembles a grounded prompt that constrains the model to the
// retrieved context, and generates an answer. When nothing is retrieved
// the assistant answers with a fixed refusal and never calls the model.
//
// Answered turns can optionally be persisted through a
// storage.ConversationRepository.
package rag
