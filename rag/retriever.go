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
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/papl/ai"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/corpus"
)

const (
	defaultBatchSize  = 16
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// Match pairs a retrieved document with its similarity to the query.
type Match struct {
	Document *core.Document
	Score    float32
}

// Retriever performs semantic retrieval over an embedded corpus.
// EmbedCorpus must complete before Retrieve can return matches; documents
// without vectors are skipped during ranking.
type Retriever struct {
	corpus     *corpus.Corpus
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) RetrieverOption {
	return func(r *Retriever) error {
		if size < 1 {
			size = 1
		}

		if r.pool != nil {
			r.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		r.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents are embedded per API call.
func WithBatchSize(size int) RetrieverOption {
	return func(r *Retriever) error {
		if size < 1 {
			size = 1
		}
		r.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for embedding API calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) RetrieverOption {
	return func(r *Retriever) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		r.maxRetries = maxAttempts
		r.retryDelay = baseDelay
		return nil
	}
}

// WithRetrieverLogger sets a custom logger.
// Default is slog.Default().
func WithRetrieverLogger(logger *slog.Logger) RetrieverOption {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a semantic retriever over the given corpus.
func NewRetriever(c *corpus.Corpus, embedder ai.Embedder, opts ...RetrieverOption) (*Retriever, error) {
	if c == nil {
		return nil, ErrCorpusRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	r := &Retriever{
		corpus:     c,
		embedder:   embedder,
		pool:       pool,
		batchSize:  defaultBatchSize,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(r); optErr != nil {
			r.Release()
			return nil, optErr
		}
	}

	return r, nil
}

// Release frees the worker pool. The retriever must not be used afterwards.
func (r *Retriever) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// EmbedCorpus generates embeddings for every corpus document, writing the
// normalized vectors back onto the documents. Batches run concurrently on
// the worker pool; the first failure aborts the result.
func (r *Retriever) EmbedCorpus(ctx context.Context) error {
	docs := r.corpus.Documents()
	if len(docs) == 0 {
		return nil
	}

	r.logger.Info("embedding corpus", "documents", len(docs), "batchSize", r.batchSize)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(docs); start += r.batchSize {
		end := start + r.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()

			if err := r.embedBatch(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			// Outstanding batches are still writing vectors; let them
			// drain before handing control back to the caller.
			wg.Wait()
			return err
		}
	}

	wg.Wait()
	return firstErr
}

// embedBatch embeds a slice of documents in one API call with retry.
func (r *Retriever) embedBatch(ctx context.Context, batch []*core.Document) error {
	texts := make([]string, len(batch))
	for i, doc := range batch {
		texts[i] = doc.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	}, r.maxRetries, r.retryDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.maxRetries, err)
	}

	if len(embeddings) != len(batch) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(embeddings))
	}

	for i := range batch {
		batch[i].Vector = NormalizeVector(embeddings[i])
	}

	return nil
}

// Retrieve returns the topK documents most similar to the query, ranked by
// cosine similarity. Documents without vectors are skipped. An empty corpus
// yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	var queryVector []float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		queryVector, err = r.embedder.EmbedText(ctx, query)
		return err
	}, r.maxRetries, r.retryDelay)
	if err != nil {
		return nil, err
	}
	queryVector = NormalizeVector(queryVector)

	var matches []Match
	for _, doc := range r.corpus.Documents() {
		if len(doc.Vector) == 0 {
			continue
		}
		matches = append(matches, Match{
			Document: doc,
			Score:    dotProduct(queryVector, doc.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	r.logger.Debug("retrieved documents", "query", query, "matches", len(matches))

	return matches, nil
}
