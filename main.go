// Command footprints runs the shared-grid relay and its players.
//
// Commands:
//  1. "relay" (default) – the fan-out relay: websocket hub, admin API and an
//     optional ngrok tunnel
//  2. "play" – a terminal player
//  3. "walk" – a headless player that wanders at random
//  4. "mcp" – a player driven by an AI agent over MCP stdio
//
// Every flag can also be set from the environment or a .env file in the
// working directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/config"
	"github.com/wricardo/footprints/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "footprints"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:           AppName,
		Usage:          "shared 40x40 grid where every step leaves a footprint",
		Version:        Version,
		DefaultCommand: "relay",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "write logs to this rotated file instead of stderr",
				Sources: cli.EnvVars("FOOTPRINTS_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("FOOTPRINTS_LOG_LEVEL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "relay",
				Usage:  "run the fan-out relay",
				Flags:  relayFlags(),
				Action: relayAction,
			},
			{
				Name:   "play",
				Usage:  "play in the terminal",
				Flags:  clientFlags(),
				Action: playAction,
			},
			{
				Name:  "walk",
				Usage: "join with a bot that walks at random",
				Flags: append(clientFlags(),
					&cli.DurationFlag{
						Name:  "interval",
						Value: 500 * time.Millisecond,
						Usage: "time between steps",
					},
					&cli.DurationFlag{
						Name:  "for",
						Usage: "stop after this long (0 walks until interrupted)",
					},
				),
				Action: walkAction,
			},
			{
				Name:   "mcp",
				Usage:  "serve a player to an AI agent over MCP stdio",
				Flags:  clientFlags(),
				Action: mcpAction,
			},
		},
	}
}

func relayFlags() []cli.Flag {
	defaults := config.DefaultRelay()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   defaults.Addr,
			Usage:   "HTTP listen address",
			Sources: cli.EnvVars("FOOTPRINTS_ADDR"),
		},
		&cli.StringFlag{
			Name:    "registry",
			Value:   defaults.Registry,
			Usage:   "participant registry: memory or postgres",
			Sources: cli.EnvVars("FOOTPRINTS_REGISTRY"),
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres connection string for the postgres registry",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "relay-name",
			Value:   defaults.RelayName,
			Usage:   "scopes registry rows when relays share a database",
			Sources: cli.EnvVars("FOOTPRINTS_RELAY_NAME"),
		},
		&cli.DurationFlag{
			Name:  "read-timeout",
			Value: defaults.ReadTimeout,
			Usage: "HTTP read timeout",
		},
		&cli.DurationFlag{
			Name:  "write-timeout",
			Value: defaults.WriteTimeout,
			Usage: "HTTP write timeout",
		},
		&cli.BoolFlag{
			Name:    "ngrok",
			Usage:   "also serve through an ngrok tunnel",
			Sources: cli.EnvVars("NGROK_ENABLED"),
		},
		&cli.StringFlag{
			Name:    "ngrok-auth",
			Usage:   "ngrok auth token",
			Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ngrok-domain",
			Usage:   "custom ngrok domain (optional)",
			Sources: cli.EnvVars("NGROK_DOMAIN"),
		},
	}
}

func clientFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "relay-url",
			Value:   config.DefaultClient().RelayURL,
			Usage:   "relay websocket URL",
			Sources: cli.EnvVars("FOOTPRINTS_RELAY_URL"),
		},
	}
}

func relayConfig(cmd *cli.Command) config.Relay {
	return config.Relay{
		Addr:         cmd.String("addr"),
		Registry:     cmd.String("registry"),
		DatabaseURL:  cmd.String("database-url"),
		RelayName:    cmd.String("relay-name"),
		LogFile:      cmd.String("log-file"),
		LogLevel:     cmd.String("log-level"),
		ReadTimeout:  cmd.Duration("read-timeout"),
		WriteTimeout: cmd.Duration("write-timeout"),
		Ngrok: config.Ngrok{
			Enabled:   cmd.Bool("ngrok"),
			AuthToken: cmd.String("ngrok-auth"),
			Domain:    cmd.String("ngrok-domain"),
		},
	}
}

func clientConfig(cmd *cli.Command) config.Client {
	return config.Client{
		RelayURL: cmd.String("relay-url"),
		LogFile:  cmd.String("log-file"),
		LogLevel: cmd.String("log-level"),
	}
}

func newLogger(file, level string) (*zap.SugaredLogger, error) {
	log, err := logging.New(logging.Options{File: file, Level: level})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, nil
}
