package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/game/config"
	"github.com/wricardo/footprints/game/engine"
	"github.com/wricardo/footprints/game/session"
	"github.com/wricardo/footprints/logging"
	"github.com/wricardo/footprints/terminal"
	"github.com/wricardo/footprints/transport/channel"
	"github.com/wricardo/footprints/transport/mcp"
)

// playLogFile keeps logs off the screen termbox draws on.
const playLogFile = "footprints-play.log"

// player is a running session with its relay connection.
type player struct {
	ctrl *session.Controller
	ch   *channel.Channel
	rng  *rand.Rand
}

func (p *player) Close() error {
	if p.ch == nil {
		return nil
	}
	return p.ch.Close()
}

// joinRelay creates a fresh character and starts its session.
func joinRelay(ctx context.Context, cfg config.Client, log *zap.SugaredLogger) (*player, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	p := &player{
		ctrl: session.New(engine.NewCharacter(rng), session.WithLogger(log)),
		rng:  rng,
	}

	connector := channel.NewConnector(cfg.RelayURL, log)
	err := p.ctrl.Start(ctx, session.ConnectorFunc(func(ctx context.Context) (session.Conn, error) {
		ch, err := connector.Connect(ctx)
		if err != nil {
			return nil, err
		}
		p.ch = ch
		return ch, nil
	}))
	if err != nil {
		return nil, err
	}

	self := p.ctrl.Self()
	log.Infow("joined", "relay", cfg.RelayURL, "id", self.ID, "color", self.Color)
	return p, nil
}

func clientSetup(cmd *cli.Command, defaultLogFile string) (config.Client, *zap.SugaredLogger, error) {
	cfg := clientConfig(cmd)
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	log, err := newLogger(cfg.LogFile, cfg.LogLevel)
	return cfg, log, err
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := clientSetup(cmd, playLogFile)
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	p, err := joinRelay(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-p.ch.Done():
			log.Warnw("relay connection closed")
			cancel()
		case <-ctx.Done():
		}
	}()

	return terminal.Run(ctx, p.ctrl)
}

func walkAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := clientSetup(cmd, "")
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	if d := cmd.Duration("for"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	p, err := joinRelay(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	return walk(ctx, p, cmd.Duration("interval"), log)
}

// walk sends a random step every interval until ctx ends or the relay
// goes away.
func walk(ctx context.Context, p *player, interval time.Duration, log *zap.SugaredLogger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	steps := 0
	for {
		select {
		case <-ctx.Done():
			log.Infow("walk finished", "steps", steps, "position", p.ctrl.Position())
			return nil
		case <-p.ch.Done():
			log.Warnw("relay connection closed", "steps", steps)
			return nil
		case <-ticker.C:
			dir := engine.Directions[p.rng.Intn(len(engine.Directions))]
			if err := p.ctrl.Move(dir); err != nil {
				return err
			}
			steps++
		}
	}
}

func mcpAction(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := clientSetup(cmd, "")
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	adminURL, err := cfg.AdminURL()
	if err != nil {
		return err
	}

	p, err := joinRelay(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	log.Infow("MCP stdio server ready", "admin", adminURL)
	return server.ServeStdio(mcp.NewServer(p.ctrl, adminURL, log).MCPServer())
}
