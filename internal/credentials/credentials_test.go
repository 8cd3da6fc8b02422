package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewFileStore(path)

	if _, err := store.Get(AdminTokenKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on a missing file, got %v", err)
	}

	if err := store.Set(AdminTokenKey, "abc123"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := store.Get(AdminTokenKey); err != nil || got != "abc123" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	// a second store on the same file sees the write
	other := NewFileStore(path)
	if got, _ := other.Get(AdminTokenKey); got != "abc123" {
		t.Errorf("second store got %q", got)
	}

	if err := other.Delete(AdminTokenKey); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(AdminTokenKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected delete to be visible to the first store, got %v", err)
	}

	if err := store.Delete("never-set"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("could not write file: %v", err)
	}
	store := NewFileStore(path)

	if _, err := store.Get(AdminTokenKey); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if err := store.Set(AdminTokenKey, "x"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected Set to refuse to overwrite a corrupt file, got %v", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if err := store.Set(AdminTokenKey, "x"); err != nil {
		t.Fatalf("Set after Reset: %v", err)
	}
}

func TestPersistedJSON(t *testing.T) {
	type cartState struct {
		Items []string `json:"items"`
	}
	store := NewMemoryStore()

	var state cartState
	found, err := LoadJSON(store, CartKey, &state)
	if err != nil || found {
		t.Fatalf("LoadJSON on empty store = %v, %v", found, err)
	}

	if err := SaveJSON(store, CartKey, cartState{Items: []string{"p1"}}); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	raw, _ := store.Get(CartKey)
	if raw != `{"state":{"items":["p1"]},"version":0}` {
		t.Errorf("unexpected persisted form %s", raw)
	}

	found, err = LoadJSON(store, CartKey, &state)
	if err != nil || !found || len(state.Items) != 1 {
		t.Fatalf("LoadJSON = %v, %v, %+v", found, err, state)
	}

	_ = store.Set(CartKey, "garbage")
	if _, err := LoadJSON(store, CartKey, &state); !errors.Is(err, ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestProviderCustomerToken(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		want    string
		wantErr bool
	}{
		{"token present", `{"state":{"token":"cust-1","isAuthenticated":true},"version":0}`, "cust-1", false},
		{"logged out", `{"state":{"user":null,"token":null,"isAuthenticated":false},"version":0}`, "", false},
		{"no state", `{"version":0}`, "", false},
		{"state null", `{"state":null}`, "", false},
		{"corrupt", `{"state":{"token":`, "", true},
		{"token wrong type", `{"state":{"token":42}}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			_ = store.Set(CustomerSessionKey, tt.stored)

			got, err := NewProvider(store).CustomerToken()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CustomerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CustomerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderAdminToken(t *testing.T) {
	store := NewMemoryStore()
	p := NewProvider(store)

	if got, err := p.AdminToken(); got != "" || err != nil {
		t.Fatalf("empty store: got %q, %v", got, err)
	}
	_ = store.Set(AdminTokenKey, "abc123")
	if got, _ := p.AdminToken(); got != "abc123" {
		t.Fatalf("got %q", got)
	}
	if err := p.ClearAdminToken(); err != nil {
		t.Fatalf("ClearAdminToken: %v", err)
	}
	if got, _ := p.AdminToken(); got != "" {
		t.Errorf("token still present after clear: %q", got)
	}
}
