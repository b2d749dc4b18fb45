package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/papl/ai/mock"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbeddedRetriever(t *testing.T) *Retriever {
	t.Helper()

	retriever, err := NewRetriever(buildTestCorpus(t), newTransportEmbedder())
	require.NoError(t, err)
	t.Cleanup(retriever.Release)

	require.NoError(t, retriever.EmbedCorpus(context.Background()))
	return retriever
}

func TestNewAssistant(t *testing.T) {
	retriever := newEmbeddedRetriever(t)

	t.Run("valid", func(t *testing.T) {
		assistant, err := NewAssistant(retriever, mock.NewMockGenerator())
		require.NoError(t, err)
		assert.NotNil(t, assistant)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewAssistant(nil, mock.NewMockGenerator())
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil generator", func(t *testing.T) {
		_, err := NewAssistant(retriever, nil)
		assert.Equal(t, ErrGeneratorRequired, err)
	})
}

func TestAsk(t *testing.T) {
	retriever := newEmbeddedRetriever(t)
	generator := mock.NewMockGenerator()

	assistant, err := NewAssistant(retriever, generator, WithTopK(3))
	require.NoError(t, err)

	answer, err := assistant.Ask(context.Background(), "how do transport supports work?")
	require.NoError(t, err)

	assert.Equal(t, "how do transport supports work?", answer.Query)
	assert.NotEmpty(t, answer.Answer)
	assert.Equal(t, 3, answer.RetrievedCount)
	assert.Equal(t, []string{"pricing_02_051", "rule_transport_rules", "guidance_1"}, answer.Sources)

	// The retrieved documents ride along so callers can render the cited
	// chunks without holding the corpus.
	require.Len(t, answer.Documents, 3)
	for i, doc := range answer.Documents {
		assert.Equal(t, answer.Sources[i], doc.ChunkID)
		assert.NotEmpty(t, doc.Content)
	}
	assert.Equal(t, core.SourceTypePricing, answer.Documents[0].SourceType)
	assert.Contains(t, answer.Documents[0].Content, "Transport - Specialised Vehicle")

	assert.Contains(t, answer.Prompt, "USER QUESTION: how do transport supports work?")
	assert.Contains(t, answer.Prompt, "[Document 1 - PRICING]")

	assert.Equal(t, 1, generator.CallCount())
	assert.Equal(t, answer.Prompt, generator.LastPrompt())
	assert.Equal(t, DefaultMaxTokens, generator.LastMaxTokens())
}

func TestAsk_NoRelevantDocuments(t *testing.T) {
	// Corpus is never embedded, so retrieval finds nothing.
	retriever, err := NewRetriever(buildTestCorpus(t), mock.NewMockEmbedder())
	require.NoError(t, err)
	defer retriever.Release()

	generator := mock.NewMockGenerator()
	assistant, err := NewAssistant(retriever, generator)
	require.NoError(t, err)

	answer, err := assistant.Ask(context.Background(), "what is the meaning of life?")
	require.NoError(t, err)

	assert.Equal(t, NoRelevantAnswer, answer.Answer)
	assert.Zero(t, answer.RetrievedCount)
	assert.Empty(t, answer.Documents)
	assert.Empty(t, answer.Sources)
	assert.Zero(t, generator.CallCount(), "model must not be called when nothing is retrieved")
}

func TestAsk_GeneratorError(t *testing.T) {
	retriever := newEmbeddedRetriever(t)

	generator := mock.NewMockGenerator()
	wantErr := errors.New("model overloaded")
	generator.GenerateAnswerFunc = func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		return "", wantErr
	}

	assistant, err := NewAssistant(retriever, generator)
	require.NoError(t, err)

	_, err = assistant.Ask(context.Background(), "transport pricing")
	assert.ErrorIs(t, err, wantErr)
}

func TestAsk_RetrievalError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	retriever, err := NewRetriever(buildTestCorpus(t), embedder, WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	defer retriever.Release()

	wantErr := errors.New("connection refused")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	assistant, err := NewAssistant(retriever, mock.NewMockGenerator())
	require.NoError(t, err)

	_, err = assistant.Ask(context.Background(), "transport pricing")
	assert.ErrorIs(t, err, wantErr)
}

func TestAsk_RecordsHistory(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	retriever := newEmbeddedRetriever(t)
	assistant, err := NewAssistant(retriever, mock.NewMockGenerator(), WithTopK(2), WithHistory(repo))
	require.NoError(t, err)

	answer, err := assistant.Ask(context.Background(), "transport rules")
	require.NoError(t, err)

	turns, err := repo.GetRecentTurns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, turns, 1)

	assert.Equal(t, "transport rules", turns[0].Query)
	assert.Equal(t, answer.Answer, turns[0].Answer)
	assert.Equal(t, answer.Sources, turns[0].Sources)
	assert.False(t, turns[0].CreatedAt.IsZero())
}

// failingHistory always rejects writes, exercising the non-fatal path.
type failingHistory struct{}

func (failingHistory) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
func (failingHistory) Close() error { return nil }
func (failingHistory) AddTurns(ctx context.Context, turns ...*core.ConversationTurn) ([]*core.ConversationTurn, error) {
	return nil, errors.New("disk full")
}
func (failingHistory) GetTurn(ctx context.Context, id core.ID) (*core.ConversationTurn, error) {
	return nil, errors.New("disk full")
}
func (failingHistory) GetRecentTurns(ctx context.Context, limit int) ([]*core.ConversationTurn, error) {
	return nil, errors.New("disk full")
}
func (failingHistory) Reset(ctx context.Context) error { return errors.New("disk full") }

func TestAsk_HistoryFailureDoesNotFailAnswer(t *testing.T) {
	retriever := newEmbeddedRetriever(t)

	assistant, err := NewAssistant(retriever, mock.NewMockGenerator(), WithHistory(failingHistory{}))
	require.NoError(t, err)

	answer, err := assistant.Ask(context.Background(), "transport rules")
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Answer)
}
