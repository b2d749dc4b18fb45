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

package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/papl/ai"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/storage"
)

const (
	// DefaultTopK is the default number of documents retrieved per question.
	DefaultTopK = 5

	// DefaultMaxTokens is the default response length limit.
	DefaultMaxTokens = 2000

	// NoRelevantAnswer is returned verbatim when retrieval finds nothing.
	NoRelevantAnswer = "I couldn't find relevant information in the PAPL documents to answer your question."
)

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	Query          string           // the question as asked
	Answer         string           // generated answer text
	Documents      []*core.Document // the retrieved documents used as context
	Sources        []string         // chunk IDs of Documents, as recorded in history
	RetrievedCount int              // number of documents retrieved
	Prompt         string           // full prompt sent to the model, for debugging
}

// Assistant answers questions over the corpus using retrieval-augmented
// generation: retrieve the most relevant documents, build a grounded
// prompt, and generate an answer constrained to that context.
type Assistant struct {
	retriever *Retriever
	generator ai.Generator
	history   storage.ConversationRepository
	topK      int
	maxTokens int
	logger    *slog.Logger
}

// AssistantOption configures an Assistant.
type AssistantOption func(*Assistant) error

// WithTopK sets how many documents are retrieved per question.
func WithTopK(topK int) AssistantOption {
	return func(a *Assistant) error {
		if topK < 1 {
			topK = 1
		}
		a.topK = topK
		return nil
	}
}

// WithMaxTokens sets the response length limit passed to the model.
func WithMaxTokens(maxTokens int) AssistantOption {
	return func(a *Assistant) error {
		if maxTokens < 1 {
			maxTokens = 1
		}
		a.maxTokens = maxTokens
		return nil
	}
}

// WithHistory sets a repository for recording question-and-answer turns.
// Without it, turns are not persisted.
func WithHistory(repo storage.ConversationRepository) AssistantOption {
	return func(a *Assistant) error {
		a.history = repo
		return nil
	}
}

// WithAssistantLogger sets a custom logger.
// Default is slog.Default().
func WithAssistantLogger(logger *slog.Logger) AssistantOption {
	return func(a *Assistant) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssistant creates a RAG assistant.
func NewAssistant(retriever *Retriever, generator ai.Generator, opts ...AssistantOption) (*Assistant, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	a := &Assistant{
		retriever: retriever,
		generator: generator,
		topK:      DefaultTopK,
		maxTokens: DefaultMaxTokens,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// Ask answers a question grounded in the corpus. When retrieval finds no
// documents, it returns NoRelevantAnswer without calling the model. When a
// history repository is configured, the turn is recorded; a recording
// failure is logged but does not fail the answer.
func (a *Assistant) Ask(ctx context.Context, query string) (*Answer, error) {
	matches, err := a.retriever.Retrieve(ctx, query, a.topK)
	if err != nil {
		a.logger.Error("error retrieving documents for query", "query", query, "err", err)
		return nil, err
	}

	if len(matches) == 0 {
		return &Answer{
			Query:  query,
			Answer: NoRelevantAnswer,
		}, nil
	}

	docs := make([]*core.Document, len(matches))
	sources := make([]string, len(matches))
	for i, match := range matches {
		docs[i] = match.Document
		sources[i] = match.Document.ChunkID
	}

	prompt := BuildPrompt(query, docs)

	answer, err := a.generator.GenerateAnswer(ctx, prompt, a.maxTokens)
	if err != nil {
		a.logger.Error("error generating answer", "query", query, "err", err)
		return nil, err
	}

	a.recordTurn(ctx, query, answer, sources)

	return &Answer{
		Query:          query,
		Answer:         answer,
		Documents:      docs,
		Sources:        sources,
		RetrievedCount: len(matches),
		Prompt:         prompt,
	}, nil
}

func (a *Assistant) recordTurn(ctx context.Context, query, answer string, sources []string) {
	if a.history == nil {
		return
	}

	turn := &core.ConversationTurn{
		Query:     query,
		Answer:    answer,
		Sources:   sources,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := a.history.AddTurns(ctx, turn); err != nil {
		a.logger.Warn("failed to record conversation turn", "err", err)
	}
}
