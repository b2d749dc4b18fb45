package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/papl/ai/mock"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()

	items := []*core.SupportItem{
		{
			Number:   "01_001",
			Name:     "Assessment Recommendation Therapy - Occupational Therapist",
			Category: "Capacity Building - Improved Daily Living",
			Unit:     "Hour",
			PriceLimits: map[string]core.PriceLimit{
				"NSW": {Price: 193.99},
			},
		},
		{
			Number:        "02_051",
			Name:          "Transport - Specialised Vehicle",
			Category:      "Core - Transport",
			Unit:          "Each",
			QuoteRequired: true,
		},
	}

	rules := map[string]any{
		"transport_rules": map[string]any{
			"description": "Transport supports can be claimed when travel is required",
		},
		"cancellation_rules": map[string]any{
			"notice_period": "48 hours",
		},
	}

	guidance := `This guide explains NDIS pricing arrangements.

## Transport Guidance

Transport supports cover travel to and from appointments.
`

	return corpus.NewBuilder().Build(items, rules, guidance)
}

// transportVector maps any text mentioning transport onto one axis and
// everything else onto another, making cosine ranking fully predictable.
func transportVector(text string) []float32 {
	if strings.Contains(strings.ToLower(text), "transport") {
		return []float32{0, 1, 0}
	}
	return []float32{1, 0, 0}
}

func newTransportEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return transportVector(text), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i, text := range texts {
			embeddings[i] = transportVector(text)
		}
		return embeddings, nil
	}
	return embedder
}

func TestNewRetriever(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		retriever, err := NewRetriever(buildTestCorpus(t), mock.NewMockEmbedder())
		require.NoError(t, err)
		defer retriever.Release()
		assert.NotNil(t, retriever)
	})

	t.Run("nil corpus", func(t *testing.T) {
		_, err := NewRetriever(nil, mock.NewMockEmbedder())
		assert.Equal(t, ErrCorpusRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewRetriever(buildTestCorpus(t), nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("invalid retry attempts", func(t *testing.T) {
		_, err := NewRetriever(buildTestCorpus(t), mock.NewMockEmbedder(), WithRetry(0, time.Millisecond))
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})
}

func TestEmbedCorpus(t *testing.T) {
	corp := buildTestCorpus(t)
	retriever, err := NewRetriever(corp, mock.NewMockEmbedder(), WithBatchSize(2))
	require.NoError(t, err)
	defer retriever.Release()

	require.NoError(t, retriever.EmbedCorpus(context.Background()))

	for _, doc := range corp.Documents() {
		require.NotEmpty(t, doc.Vector, "document %s has no vector", doc.ChunkID)

		var magnitude float64
		for _, v := range doc.Vector {
			magnitude += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-5, "vector for %s is not normalized", doc.ChunkID)
	}
}

func TestEmbedCorpus_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service unavailable")
	}

	retriever, err := NewRetriever(buildTestCorpus(t), embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer retriever.Release()

	err = retriever.EmbedCorpus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate embeddings")
}

func TestEmbedCorpus_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0, 0}}, nil
	}

	retriever, err := NewRetriever(buildTestCorpus(t), embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer retriever.Release()

	err = retriever.EmbedCorpus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestEmbedCorpus_AfterRelease(t *testing.T) {
	retriever, err := NewRetriever(buildTestCorpus(t), mock.NewMockEmbedder())
	require.NoError(t, err)

	retriever.Release()

	err = retriever.EmbedCorpus(context.Background())
	require.Error(t, err)
}

func TestRetrieve(t *testing.T) {
	corp := buildTestCorpus(t)
	retriever, err := NewRetriever(corp, newTransportEmbedder())
	require.NoError(t, err)
	defer retriever.Release()

	require.NoError(t, retriever.EmbedCorpus(context.Background()))

	t.Run("ranks by similarity", func(t *testing.T) {
		matches, err := retriever.Retrieve(context.Background(), "transport", 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)

		// Transport documents score 1.0, everything else 0. Ties keep
		// corpus order: pricing, then rules, then guidance.
		assert.Equal(t, "pricing_02_051", matches[0].Document.ChunkID)
		assert.Equal(t, "rule_transport_rules", matches[1].Document.ChunkID)
		assert.Equal(t, "guidance_1", matches[2].Document.ChunkID)
		for _, match := range matches {
			assert.InDelta(t, 1.0, match.Score, 1e-5)
		}
	})

	t.Run("truncates to topK", func(t *testing.T) {
		matches, err := retriever.Retrieve(context.Background(), "transport", 2)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("topK of zero returns nothing", func(t *testing.T) {
		matches, err := retriever.Retrieve(context.Background(), "transport", 0)
		require.NoError(t, err)
		assert.Nil(t, matches)
	})
}

func TestRetrieve_BeforeEmbedding(t *testing.T) {
	retriever, err := NewRetriever(buildTestCorpus(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer retriever.Release()

	matches, err := retriever.Retrieve(context.Background(), "transport", 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestRetrieve_QueryEmbeddingError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(buildTestCorpus(t), embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer retriever.Release()

	require.NoError(t, retriever.EmbedCorpus(context.Background()))

	wantErr := errors.New("connection refused")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err = retriever.Retrieve(context.Background(), "transport", 5)
	assert.ErrorIs(t, err, wantErr)
}
