// Package session writes the login state the request layer reads tokens from:
// the customer session under auth-storage and the admin token under adminToken.
package session

import (
	"errors"
	"fmt"

	"github.com/aviravastra/storefront/internal/api"
	"github.com/aviravastra/storefront/internal/credentials"
)

var ErrNotLoggedIn = errors.New("not logged in")

// CustomerState is the persisted customer session.
// Token is a pointer so that a logged out session is stored as null.
type CustomerState struct {
	User            *api.User `json:"user"`
	Token           *string   `json:"token"`
	IsAuthenticated bool      `json:"isAuthenticated"`
}

// Manager reads and writes login state in a credentials.Store
type Manager struct {
	store credentials.Store
}

func NewManager(store credentials.Store) *Manager {
	return &Manager{store: store}
}

// Login stores the customer session returned by the auth endpoint
func (m *Manager) Login(user api.User, token string) error {
	if token == "" {
		return fmt.Errorf("cannot log in without a token")
	}
	state := CustomerState{
		User:            &user,
		Token:           &token,
		IsAuthenticated: true,
	}
	if err := credentials.SaveJSON(m.store, credentials.CustomerSessionKey, state); err != nil {
		return fmt.Errorf("saving customer session: %w", err)
	}
	return nil
}

// Logout keeps the envelope but empties it, the same shape a fresh client writes
func (m *Manager) Logout() error {
	if err := credentials.SaveJSON(m.store, credentials.CustomerSessionKey, CustomerState{}); err != nil {
		return fmt.Errorf("clearing customer session: %w", err)
	}
	return nil
}

// Current returns the stored customer session, or ErrNotLoggedIn
func (m *Manager) Current() (*CustomerState, error) {
	var state CustomerState
	found, err := credentials.LoadJSON(m.store, credentials.CustomerSessionKey, &state)
	if err != nil {
		return nil, err
	}
	if !found || !state.IsAuthenticated || state.Token == nil || *state.Token == "" {
		return nil, ErrNotLoggedIn
	}
	return &state, nil
}

// AdminLogin stores the raw admin token
func (m *Manager) AdminLogin(token string) error {
	if token == "" {
		return fmt.Errorf("cannot log in without a token")
	}
	if err := m.store.Set(credentials.AdminTokenKey, token); err != nil {
		return fmt.Errorf("saving admin token: %w", err)
	}
	return nil
}

func (m *Manager) AdminLogout() error {
	if err := m.store.Delete(credentials.AdminTokenKey); err != nil {
		return fmt.Errorf("clearing admin token: %w", err)
	}
	return nil
}

// AdminToken returns the stored admin token, or ErrNotLoggedIn
func (m *Manager) AdminToken() (string, error) {
	token, err := m.store.Get(credentials.AdminTokenKey)
	if errors.Is(err, credentials.ErrNotFound) || (err == nil && token == "") {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	return token, nil
}
