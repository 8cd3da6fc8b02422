package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewClientConfigDefaults(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.json")
	t.Setenv("STATE_FILE", state)
	unsetenv(t, "ENVIRONMENT", "API_BASE_URL", "REQUEST_TIMEOUT")

	cfg, err := NewClientConfig()
	if err != nil {
		t.Fatalf("NewClientConfig: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:5000/api" {
		t.Errorf("got base url %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("got timeout %v", cfg.RequestTimeout)
	}
	if cfg.StateFile != state {
		t.Errorf("got state file %q", cfg.StateFile)
	}
}

func TestClientConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad environment", map[string]string{"ENVIRONMENT": "qa"}, "invalid environment"},
		{"relative url", map[string]string{"API_BASE_URL": "localhost:5000/api"}, "http(s) URL"},
		{"zero timeout", map[string]string{"REQUEST_TIMEOUT": "0s"}, "timeout must be positive"},
		{"unparsable timeout", map[string]string{"REQUEST_TIMEOUT": "soon"}, "unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STATE_FILE", filepath.Join(t.TempDir(), "state.json"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewClientConfig()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"defaults", nil, ""},
		{"short prod secret", map[string]string{"ENVIRONMENT": "prod"}, "JWT_SECRET"},
		{"port out of range", map[string]string{"PORT": "70000"}, "port must be between"},
		{"negative rate", map[string]string{"RATE_LIMIT_RPS": "-1"}, "rate limits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewAPIConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := &APIConfig{AllowedOrigins: " http://localhost:5173, https://aviravastra.com ,,"}
	got := cfg.Origins()
	if len(got) != 2 || got[0] != "http://localhost:5173" || got[1] != "https://aviravastra.com" {
		t.Errorf("got %v", got)
	}
}

// unsetenv removes keys for the duration of the test
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}
