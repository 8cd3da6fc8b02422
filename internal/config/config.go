package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Netflix/go-env"
)

// ClientConfig configures the storefront command line client
type ClientConfig struct {
	Environment      string        `env:"ENVIRONMENT,default=dev"`
	LogLevel         string        `env:"LOG_LEVEL,default=info"`
	APIBaseURL       string        `env:"API_BASE_URL,default=http://localhost:5000/api"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=10s"`
	MaxResponseBytes int64         `env:"MAX_RESPONSE_BYTES,default=10485760"`
	StateFile        string        `env:"STATE_FILE"`
}

// APIConfig configures the development backend (cmd/storefront-api)
type APIConfig struct {
	Environment    string        `env:"ENVIRONMENT,default=dev"`
	LogLevel       string        `env:"LOG_LEVEL,default=debug"`
	Host           string        `env:"HOST,default=0.0.0.0"`
	Port           int           `env:"PORT,default=5000"`
	ReadTimeout    time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	JWTSecret      string        `env:"JWT_SECRET,default=dev-only-secret-change-me"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,default=24h"`
	AdminEmail     string        `env:"ADMIN_EMAIL,default=admin@aviravastra.com"`
	AdminPassword  string        `env:"ADMIN_PASSWORD,default=change-me-please"`
	AllowedOrigins string        `env:"ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimitRPS   int           `env:"RATE_LIMIT_RPS,default=50"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST,default=100"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES,default=5242880"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"staging": true,
	"prod":    true,
}

const stateFileName = "state.json"

// NewClientConfig reads the client configuration from the environment
func NewClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if cfg.StateFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not locate user config directory (set STATE_FILE): %w", err)
		}
		cfg.StateFile = filepath.Join(dir, "storefront", stateFileName)
	}

	if err := validateClientConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func validateClientConfig(cfg *ClientConfig) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if cfg.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL cannot be empty")
	}
	if !strings.HasPrefix(cfg.APIBaseURL, "http://") && !strings.HasPrefix(cfg.APIBaseURL, "https://") {
		return fmt.Errorf("API_BASE_URL must be an http(s) URL, got %q", cfg.APIBaseURL)
	}

	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxResponseBytes <= 0 {
		return fmt.Errorf("max response bytes must be positive, got %d", cfg.MaxResponseBytes)
	}

	return nil
}

// NewAPIConfig reads the development backend configuration from the environment
func NewAPIConfig() (*APIConfig, error) {
	var cfg APIConfig

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateAPIConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func validateAPIConfig(cfg *APIConfig) error {
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid environment '%s'. Valid environments: dev, test, staging, prod", cfg.Environment)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %v", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %v", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %v", cfg.IdleTimeout)
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %v", cfg.TokenTTL)
	}

	if cfg.Environment == "prod" && len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in prod")
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	return nil
}

// Origins splits ALLOWED_ORIGINS into a list
func (c *APIConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
