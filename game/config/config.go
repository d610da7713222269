package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	RegistryMemory   = "memory"
	RegistryPostgres = "postgres"
)

// Ngrok controls the optional public tunnel in front of the relay.
type Ngrok struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

// Relay holds the settings of the fan-out relay server.
type Relay struct {
	Addr         string
	Registry     string
	DatabaseURL  string
	RelayName    string
	LogFile      string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Ngrok        Ngrok
}

// Client holds the settings of a player process.
type Client struct {
	RelayURL string
	LogFile  string
	LogLevel string
}

// DefaultRelay returns the relay settings used when nothing is overridden.
func DefaultRelay() Relay {
	return Relay{
		Addr:         ":8080",
		Registry:     RegistryMemory,
		RelayName:    "footprints",
		LogLevel:     "info",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// DefaultClient returns the client settings used when nothing is overridden.
func DefaultClient() Client {
	return Client{
		RelayURL: "ws://localhost:8080/ws",
		LogLevel: "info",
	}
}

// Validate checks the relay settings.
func (r Relay) Validate() error {
	if r.Addr == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidConfig)
	}
	switch r.Registry {
	case RegistryMemory:
	case RegistryPostgres:
		if r.DatabaseURL == "" {
			return fmt.Errorf("%w: postgres registry requires a database URL", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown registry %q", ErrInvalidConfig, r.Registry)
	}
	if strings.TrimSpace(r.RelayName) == "" {
		return fmt.Errorf("%w: relay name is required", ErrInvalidConfig)
	}
	if r.ReadTimeout < 0 || r.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if r.Ngrok.Enabled && r.Ngrok.AuthToken == "" {
		return fmt.Errorf("%w: ngrok enabled without an auth token", ErrInvalidConfig)
	}
	return validateLevel(r.LogLevel)
}

// Validate checks the client settings.
func (c Client) Validate() error {
	u, err := url.Parse(c.RelayURL)
	if err != nil {
		return fmt.Errorf("%w: relay URL: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: relay URL must use ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: relay URL has no host", ErrInvalidConfig)
	}
	return validateLevel(c.LogLevel)
}

func validateLevel(level string) error {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, level)
}

// LoadEnvFiles loads the given .env files (default ".env") into the process
// environment. Missing files are not an error; variables already set win.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// AdminURL derives the relay's HTTP base URL from the websocket URL:
// ws://host:8080/ws becomes http://host:8080.
func (c Client) AdminURL() (string, error) {
	u, err := url.Parse(c.RelayURL)
	if err != nil {
		return "", fmt.Errorf("%w: relay URL: %v", ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("%w: relay URL must use ws or wss, got %q", ErrInvalidConfig, u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws")
	u.RawQuery = ""
	return strings.TrimSuffix(u.String(), "/"), nil
}
