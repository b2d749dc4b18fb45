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

package papl

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/papl/ai"
	"github.com/poiesic/papl/ai/openai"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/corpus"
	"github.com/poiesic/papl/rag"
	"github.com/poiesic/papl/search"
	"github.com/poiesic/papl/storage"
	"github.com/poiesic/papl/storage/badger"
)

// Service is the top-level entry point: keyword search, refinement
// suggestions, and retrieval-augmented question answering over one corpus.
type Service struct {
	corpus      *corpus.Corpus
	engine      *search.Engine
	retriever   *rag.Retriever
	assistant   *rag.Assistant
	provider    ai.Provider
	backend     *badger.Backend
	historyRepo storage.ConversationRepository
	logger      *slog.Logger

	embedMu  sync.Mutex
	embedded bool
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	aiConfig    *ai.Config
	storagePath string
	poolSize    int
	topK        int
	maxTokens   int
	logger      *slog.Logger
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.aiConfig = config
	}
}

// WithStoragePath enables persistent conversation history at the given
// directory. Without it, answered turns are not recorded.
func WithStoragePath(path string) ServiceOption {
	return func(o *serviceOptions) {
		o.storagePath = path
	}
}

// WithPoolSize sets the worker pool size for corpus embedding.
func WithPoolSize(size int) ServiceOption {
	return func(o *serviceOptions) {
		o.poolSize = size
	}
}

// WithTopK sets how many documents are retrieved per question.
func WithTopK(topK int) ServiceOption {
	return func(o *serviceOptions) {
		o.topK = topK
	}
}

// WithMaxTokens sets the response length limit for generated answers.
func WithMaxTokens(maxTokens int) ServiceOption {
	return func(o *serviceOptions) {
		o.maxTokens = maxTokens
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService assembles a search engine and RAG assistant over the corpus.
func NewService(c *corpus.Corpus, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		aiConfig:  ai.DefaultConfig(),
		topK:      rag.DefaultTopK,
		maxTokens: rag.DefaultMaxTokens,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	engine, err := search.NewEngine(c, search.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}

	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}

	retrieverOpts := []rag.RetrieverOption{rag.WithRetrieverLogger(options.logger)}
	if options.poolSize > 0 {
		retrieverOpts = append(retrieverOpts, rag.WithPoolSize(options.poolSize))
	}

	retriever, err := rag.NewRetriever(c, provider.Embedder(), retrieverOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	s := &Service{
		corpus:    c,
		engine:    engine,
		retriever: retriever,
		provider:  provider,
		logger:    options.logger,
	}

	if options.storagePath != "" {
		historyRepo, backend, err := badger.NewRepository(options.storagePath)
		if err != nil {
			retriever.Release()
			provider.Close()
			return nil, err
		}
		s.historyRepo = historyRepo
		s.backend = backend
	}

	assistantOpts := []rag.AssistantOption{
		rag.WithTopK(options.topK),
		rag.WithMaxTokens(options.maxTokens),
		rag.WithAssistantLogger(options.logger),
	}
	if s.historyRepo != nil {
		assistantOpts = append(assistantOpts, rag.WithHistory(s.historyRepo))
	}

	assistant, err := rag.NewAssistant(retriever, provider.Generator(), assistantOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.assistant = assistant

	return s, nil
}

// Search runs keyword search over the corpus.
func (s *Service) Search(query string, maxResults int) []core.SearchResult {
	return s.engine.Search(query, maxResults)
}

// SuggestRefinements proposes refinements for a query given its results.
func (s *Service) SuggestRefinements(query string, results []core.SearchResult) []string {
	return s.engine.SuggestRefinements(query, results)
}

// Ask answers a question with retrieval-augmented generation. The corpus
// is embedded on first use; concurrent callers block until it completes.
func (s *Service) Ask(ctx context.Context, query string) (*rag.Answer, error) {
	if err := s.ensureEmbedded(ctx); err != nil {
		return nil, err
	}
	return s.assistant.Ask(ctx, query)
}

// EmbedCorpus eagerly embeds the corpus, so the first Ask doesn't pay
// the embedding cost. Safe to call more than once.
func (s *Service) EmbedCorpus(ctx context.Context) error {
	return s.ensureEmbedded(ctx)
}

func (s *Service) ensureEmbedded(ctx context.Context) error {
	s.embedMu.Lock()
	defer s.embedMu.Unlock()

	if s.embedded {
		return nil
	}
	if err := s.retriever.EmbedCorpus(ctx); err != nil {
		return err
	}
	s.embedded = true
	return nil
}

// History returns the most recent answered turns, newest first.
// Without persistent storage it returns an empty list.
func (s *Service) History(ctx context.Context, limit int) ([]*core.ConversationTurn, error) {
	if s.historyRepo == nil {
		return nil, nil
	}
	return s.historyRepo.GetRecentTurns(ctx, limit)
}

// ClearHistory removes all recorded turns.
func (s *Service) ClearHistory(ctx context.Context) error {
	if s.historyRepo == nil {
		return nil
	}
	return s.historyRepo.Reset(ctx)
}

// Close releases the retriever pool, AI provider, and storage.
func (s *Service) Close() error {
	s.retriever.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if s.historyRepo != nil {
		if err := s.historyRepo.Close(); err != nil {
			s.logger.Error("error closing history repository", "err", err)
			return err
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			return err
		}
	}
	return nil
}
