package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRelay_Valid(t *testing.T) {
	if err := DefaultRelay().Validate(); err != nil {
		t.Errorf("Default relay config should be valid, got %v", err)
	}
}

func TestDefaultClient_Valid(t *testing.T) {
	if err := DefaultClient().Validate(); err != nil {
		t.Errorf("Default client config should be valid, got %v", err)
	}
}

func TestRelayValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Relay)
		valid  bool
	}{
		{"postgres with url", func(r *Relay) { r.Registry = RegistryPostgres; r.DatabaseURL = "postgres://x" }, true},
		{"postgres without url", func(r *Relay) { r.Registry = RegistryPostgres }, false},
		{"unknown registry", func(r *Relay) { r.Registry = "redis" }, false},
		{"empty addr", func(r *Relay) { r.Addr = "" }, false},
		{"blank relay name", func(r *Relay) { r.RelayName = "  " }, false},
		{"negative timeout", func(r *Relay) { r.ReadTimeout = -1 }, false},
		{"ngrok without token", func(r *Relay) { r.Ngrok.Enabled = true }, false},
		{"ngrok with token", func(r *Relay) { r.Ngrok = Ngrok{Enabled: true, AuthToken: "tok"} }, true},
		{"bad level", func(r *Relay) { r.LogLevel = "chatty" }, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := DefaultRelay()
			test.mutate(&r)
			err := r.Validate()
			if test.valid && err != nil {
				t.Errorf("Expected valid, got %v", err)
			}
			if !test.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestClientValidate(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"ws://localhost:8080/ws", true},
		{"wss://relay.example.com/ws", true},
		{"http://localhost:8080/ws", false},
		{"ws:///ws", false},
		{"::", false},
	}

	for _, test := range tests {
		c := DefaultClient()
		c.RelayURL = test.url
		err := c.Validate()
		if test.valid && err != nil {
			t.Errorf("%s: expected valid, got %v", test.url, err)
		}
		if !test.valid && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", test.url, err)
		}
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("FOOTPRINTS_TEST_VALUE=from-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("FOOTPRINTS_TEST_VALUE") })

	if err := LoadEnvFiles(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}
	if got := os.Getenv("FOOTPRINTS_TEST_VALUE"); got != "from-file" {
		t.Errorf("Expected from-file, got %q", got)
	}
}

func TestLoadEnvFiles_ExistingWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	os.WriteFile(path, []byte("FOOTPRINTS_TEST_KEEP=from-file\n"), 0644)
	t.Setenv("FOOTPRINTS_TEST_KEEP", "from-env")

	if err := LoadEnvFiles(path); err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}
	if got := os.Getenv("FOOTPRINTS_TEST_KEEP"); got != "from-env" {
		t.Errorf("Expected existing variable to win, got %q", got)
	}
}

func TestLoadEnvFiles_NoneExist(t *testing.T) {
	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "nope.env")); err != nil {
		t.Errorf("Expected missing files to be ignored, got %v", err)
	}
}

func TestClientAdminURL(t *testing.T) {
	tests := []struct {
		relay    string
		expected string
		valid    bool
	}{
		{"ws://localhost:8080/ws", "http://localhost:8080", true},
		{"wss://relay.example.com/ws?x=1", "https://relay.example.com", true},
		{"ws://host/prefix/ws", "http://host/prefix", true},
		{"http://host/ws", "", false},
	}

	for _, test := range tests {
		got, err := Client{RelayURL: test.relay}.AdminURL()
		if (err == nil) != test.valid {
			t.Errorf("AdminURL(%q): expected valid=%v, got %v", test.relay, test.valid, err)
			continue
		}
		if got != test.expected {
			t.Errorf("AdminURL(%q): expected %q, got %q", test.relay, test.expected, got)
		}
	}
}
