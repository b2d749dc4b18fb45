package storage

import (
	"context"

	"github.com/poiesic/papl/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ConversationRepository provides operations for the question-and-answer log.
type ConversationRepository interface {
	Repository
	// AddTurns appends one or more conversation turns to storage.
	// For turns with Id=0, generates new IDs from sequence.
	// Sets CreatedAt timestamp if not already set.
	// Returns the turns with generated IDs and timestamps populated.
	AddTurns(ctx context.Context, turns ...*core.ConversationTurn) ([]*core.ConversationTurn, error)

	// GetTurn retrieves a single conversation turn by ID.
	// Returns ErrNotFound if the turn doesn't exist.
	GetTurn(ctx context.Context, id core.ID) (*core.ConversationTurn, error)

	// GetRecentTurns retrieves the N most recent turns, most recent first.
	// Returns up to limit turns.
	GetRecentTurns(ctx context.Context, limit int) ([]*core.ConversationTurn, error)

	// Reset removes all conversation turns.
	Reset(ctx context.Context) error
}
