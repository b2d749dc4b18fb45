package badger

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/papl/core"
	"github.com/poiesic/papl/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (*ConversationRepository, error) {
	idSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ConversationRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddTurns appends one or more conversation turns to storage.
func (r *ConversationRepository) AddTurns(ctx context.Context, turns ...*core.ConversationTurn) ([]*core.ConversationTurn, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			turn.Id = core.ID(nextID)

			if turn.CreatedAt.IsZero() {
				turn.CreatedAt = time.Now().UTC()
			}

			// Store primary record
			key := makeTurnKey(turn.Id)
			value := storage.MarshalConversationTurn(turn)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update date index
			dateKey := makeTurnDateKey(turn.CreatedAt, turn.Id)
			if err := tx.Set(dateKey, storage.MarshalID(turn.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return turns, err
}

// GetTurn retrieves a single conversation turn by ID.
func (r *ConversationRepository) GetTurn(ctx context.Context, id core.ID) (*core.ConversationTurn, error) {
	var result *core.ConversationTurn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeTurnKey(id)
		var err error
		result, err = r.readTurn(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecentTurns retrieves the N most recent turns, most recent first.
func (r *ConversationRepository) GetRecentTurns(ctx context.Context, limit int) ([]*core.ConversationTurn, error) {
	var results []*core.ConversationTurn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reverse iterator walks the date index newest first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true

		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialTurnDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(turnDatePrefix + ":")

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()

			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var turnID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				turnID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			turn, err := r.readTurn(tx, makeTurnKey(turnID))
			if err != nil {
				return err
			}
			if turn != nil {
				results = append(results, turn)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// Reset removes all conversation turns and their index entries.
func (r *ConversationRepository) Reset(ctx context.Context) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range []string{turnPrefix + ":", turnDatePrefix + ":"} {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(prefix)
			opts.PrefetchValues = false

			iter := tx.NewIterator(opts)
			var keys [][]byte
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()

			for _, key := range keys {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
}

// readTurn reads and deserializes a turn, returning nil if absent.
func (r *ConversationRepository) readTurn(tx *badger.Txn, key []byte) (*core.ConversationTurn, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var turn *core.ConversationTurn
	err = item.Value(func(val []byte) error {
		var err error
		turn, err = storage.UnmarshalConversationTurn(val)
		return err
	})
	return turn, err
}
