package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Provider reads bearer tokens from a Store at request time. Nothing is cached:
// a login or logout written to the store applies to the very next request.
type Provider struct {
	store Store
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// AdminToken returns the raw admin token, or "" when none is stored
func (p *Provider) AdminToken() (string, error) {
	token, err := p.store.Get(AdminTokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", AdminTokenKey, err)
	}
	return token, nil
}

// CustomerToken extracts state.token from the persisted customer session.
// A missing key, missing state or missing token all yield "".
func (p *Provider) CustomerToken() (string, error) {
	raw, err := p.store.Get(CustomerSessionKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", CustomerSessionKey, err)
	}

	var session struct {
		State *struct {
			Token *string `json:"token"`
		} `json:"state"`
	}
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorrupt, CustomerSessionKey, err)
	}
	if session.State == nil || session.State.Token == nil {
		return "", nil
	}
	return *session.State.Token, nil
}

// ClearAdminToken removes the admin token (forced logout)
func (p *Provider) ClearAdminToken() error {
	if err := p.store.Delete(AdminTokenKey); err != nil {
		return fmt.Errorf("clearing %s: %w", AdminTokenKey, err)
	}
	return nil
}
