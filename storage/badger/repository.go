package badger

import "github.com/poiesic/papl/storage"

// NewRepository opens an on-disk conversation repository at the given path.
// Returns the repository and its backend. Caller must close both when done.
func NewRepository(path string) (storage.ConversationRepository, *Backend, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, nil, err
	}

	repo, err := NewConversationRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	return repo, backend, nil
}
