package apiclient

import (
	"bytes"
	"testing"
)

func TestIsAdminScoped(t *testing.T) {
	tests := []struct {
		location string
		endpoint string
		want     bool
	}{
		{"", "/products", false},
		{"", "/products?search=silk", false},
		{"", "/admin/orders", true},
		{"", "/upload/image", true},
		{"/admin/products", "/categories", true},
		{"/admin-login", "/auth/admin-login", true},
		{"/cart", "/orders", false},
		{"/products", "/auth/google", false},
	}

	for _, tt := range tests {
		if got := IsAdminScoped(tt.location, tt.endpoint); got != tt.want {
			t.Errorf("IsAdminScoped(%q, %q) = %v, want %v", tt.location, tt.endpoint, got, tt.want)
		}
	}
}

func TestQueryEncode(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  string
	}{
		{"empty", nil, ""},
		{"string", Query{"search": "silk"}, "search=silk"},
		{"bool and int", Query{"isActive": true, "limit": 4}, "isActive=true&limit=4"},
		{"float", Query{"minPrice": 1499.5}, "minPrice=1499.5"},
		{"spaces are escaped", Query{"search": "banarasi silk"}, "search=banarasi+silk"},
		{"nil values skipped", Query{"search": nil, "occasion": "wedding"}, "occasion=wedding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Encode(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestEndpoint(t *testing.T) {
	r := Request{Path: "/products", Query: Query{"search": "silk"}}
	if got := r.endpoint(); got != "/products?search=silk" {
		t.Errorf("got %q", got)
	}
	r = Request{Path: "/products"}
	if got := r.endpoint(); got != "/products" {
		t.Errorf("got %q", got)
	}
}

func TestMultipartCanBeResent(t *testing.T) {
	m := NewMultipart()
	if err := m.AddField("alt", "Pallu detail"); err != nil {
		t.Fatalf("AddField: %v", err)
	}

	first, err := m.reader()
	if err != nil {
		t.Fatalf("reader: %v", err)
	}
	second, err := m.reader()
	if err != nil {
		t.Fatalf("reader: %v", err)
	}

	var a, b bytes.Buffer
	_, _ = a.ReadFrom(first)
	_, _ = b.ReadFrom(second)
	if a.Len() == 0 || !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("expected identical non-empty payloads")
	}

	if err := m.AddField("late", "x"); err == nil {
		t.Error("expected error adding a field after the payload was sent")
	}
}

func TestReadAllWithLimit(t *testing.T) {
	payload := []byte("hello")

	got, err := readAllWithLimit(bytes.NewReader(payload), int64(len(payload)))
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("within limit: got %q, %v", got, err)
	}

	_, err = readAllWithLimit(bytes.NewReader(payload), 2)
	if !IsResponseTooLarge(err) {
		t.Fatalf("expected ResponseTooLargeError, got %v", err)
	}

	got, err = readAllWithLimit(bytes.NewReader(payload), 0)
	if err != nil || !bytes.Equal(got, payload) {
		t.Fatalf("unlimited: got %q, %v", got, err)
	}
}
