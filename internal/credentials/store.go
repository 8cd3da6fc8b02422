// Package credentials holds the persisted key/value state shared by the storefront client:
// the admin bearer token, the customer session and the cart.
//
// Values are plain strings, mirroring browser local storage. Structured values
// (the customer session, the cart) are JSON documents wrapped in a Persisted envelope.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// storage keys
const (
	AdminTokenKey      = "adminToken"
	CustomerSessionKey = "auth-storage"
	CartKey            = "cart-storage"
)

var (
	ErrNotFound = errors.New("key not found")
	ErrCorrupt  = errors.New("stored state is corrupt")
)

// Store is a process-wide persisted key/value store.
// Get returns ErrNotFound when the key is absent.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Persisted is the envelope used for structured values: {"state": ..., "version": 0}
type Persisted[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

// LoadJSON reads key and decodes its Persisted envelope into state.
// found is false when the key does not exist.
func LoadJSON[T any](store Store, key string, state *T) (found bool, err error) {
	raw, err := store.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var p Persisted[T]
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return true, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	*state = p.State
	return true, nil
}

// SaveJSON stores state under key wrapped in a Persisted envelope
func SaveJSON[T any](store Store, key string, state T) error {
	dat, err := json.Marshal(Persisted[T]{State: state})
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	return store.Set(key, string(dat))
}

// MemoryStore is an in-process Store, used in tests and for one-shot commands
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}
