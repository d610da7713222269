package main

import (
	"context"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/config"
	"github.com/wricardo/footprints/game/session"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "footprints" {
		t.Errorf("Expected app name footprints, got %s", AppName)
	}
}

func TestNewAppCommands(t *testing.T) {
	app := newApp()

	if app.DefaultCommand != "relay" {
		t.Errorf("Expected relay as default command, got %q", app.DefaultCommand)
	}

	expected := map[string]bool{"relay": false, "play": false, "walk": false, "mcp": false}
	for _, cmd := range app.Commands {
		if _, ok := expected[cmd.Name]; ok {
			expected[cmd.Name] = true
		}
		if cmd.Action == nil {
			t.Errorf("Command %s has no action", cmd.Name)
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("Missing command %s", name)
		}
	}
}

func findCommand(app *cli.Command, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestRelayConfigFromFlags(t *testing.T) {
	app := newApp()
	var got config.Relay
	findCommand(app, "relay").Action = func(ctx context.Context, cmd *cli.Command) error {
		got = relayConfig(cmd)
		return nil
	}

	err := app.Run(context.Background(), []string{
		"footprints", "--log-level", "debug",
		"relay", "--addr", ":9999", "--registry", "postgres",
		"--database-url", "postgres://localhost/footprints", "--read-timeout", "3s",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.Addr != ":9999" {
		t.Errorf("Expected addr :9999, got %s", got.Addr)
	}
	if got.Registry != config.RegistryPostgres || got.DatabaseURL != "postgres://localhost/footprints" {
		t.Errorf("Unexpected registry settings %+v", got)
	}
	if got.ReadTimeout != 3*time.Second {
		t.Errorf("Expected read timeout 3s, got %v", got.ReadTimeout)
	}
	if got.WriteTimeout != config.DefaultRelay().WriteTimeout {
		t.Errorf("Expected default write timeout, got %v", got.WriteTimeout)
	}
	if got.LogLevel != "debug" {
		t.Errorf("Expected log level from root flag, got %s", got.LogLevel)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestClientConfigFromFlags(t *testing.T) {
	app := newApp()
	var got config.Client
	findCommand(app, "walk").Action = func(ctx context.Context, cmd *cli.Command) error {
		got = clientConfig(cmd)
		return nil
	}

	if err := app.Run(context.Background(), []string{"footprints", "walk"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got.RelayURL != config.DefaultClient().RelayURL {
		t.Errorf("Expected default relay URL, got %s", got.RelayURL)
	}
}

func startTestRelay(t *testing.T) string {
	t.Helper()

	cfg := config.DefaultRelay()
	cfg.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() { done <- runRelay(ctx, cfg, zap.NewNop().Sugar(), ready) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Relay returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Relay did not shut down")
		}
	})

	select {
	case addr := <-ready:
		return "ws://" + addr + "/ws"
	case err := <-done:
		t.Fatalf("Relay failed to start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Relay did not start")
	}
	return ""
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestPlayersConvergeThroughRelay(t *testing.T) {
	relayURL := startTestRelay(t)
	log := zap.NewNop().Sugar()
	cfg := config.Client{RelayURL: relayURL, LogLevel: "info"}
	ctx := context.Background()

	first, err := joinRelay(ctx, cfg, log)
	if err != nil {
		t.Fatalf("First join failed: %v", err)
	}
	defer first.Close()
	waitFor(t, "first session to activate", func() bool { return first.ctrl.State() == session.Active })

	second, err := joinRelay(ctx, cfg, log)
	if err != nil {
		t.Fatalf("Second join failed: %v", err)
	}
	defer second.Close()

	firstID := first.ctrl.Self().ID
	waitFor(t, "second session to receive the snapshot", func() bool {
		_, ok := second.ctrl.World().Character(firstID)
		return ok
	})

	walkCtx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer cancel()
	if err := walk(walkCtx, second, 10*time.Millisecond, log); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	secondID := second.ctrl.Self().ID
	waitFor(t, "first session to see the walker", func() bool {
		_, ok := first.ctrl.World().Character(secondID)
		return ok
	})
}

func TestJoinRelayUnreachable(t *testing.T) {
	cfg := config.Client{RelayURL: "ws://127.0.0.1:1/ws"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := joinRelay(ctx, cfg, zap.NewNop().Sugar()); err == nil {
		t.Error("Expected join to fail without a relay")
	}
}
