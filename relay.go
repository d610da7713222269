package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/footprints/api"
	"github.com/wricardo/footprints/game/config"
	"github.com/wricardo/footprints/logging"
	"github.com/wricardo/footprints/transport/registry"
	"github.com/wricardo/footprints/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

func relayAction(ctx context.Context, cmd *cli.Command) error {
	cfg := relayConfig(cmd)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	return runRelay(ctx, cfg, log, nil)
}

// runRelay serves the relay until ctx is cancelled. ready, when set,
// receives the bound address once the listener is up.
func runRelay(ctx context.Context, cfg config.Relay, log *zap.SugaredLogger, ready chan<- string) (err error) {
	reg, err := registry.Open(ctx, cfg.Registry, cfg.DatabaseURL, cfg.RelayName)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, reg.Close())
	}()

	// rows left by a crashed run would otherwise win elections
	if err := reg.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset registry: %w", err)
	}

	hub := websocket.NewHub(reg, log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	defer func() {
		stopHub()
		<-hub.Done()
	}()

	handler := api.NewServer(hub, log)
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Addr, err)
	}

	serveErr := make(chan error, 2)
	go func() {
		log.Infow("relay listening",
			"addr", listener.Addr().String(),
			"registry", cfg.Registry,
			"websocket", fmt.Sprintf("ws://%s/ws", listener.Addr()),
		)
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()
	if ready != nil {
		ready <- listener.Addr().String()
	}

	var tunnel ngrok.Tunnel
	if cfg.Ngrok.Enabled {
		var tunnelErr error
		if tunnel, tunnelErr = startTunnel(ctx, cfg.Ngrok, handler, log); tunnelErr != nil {
			log.Errorw("failed to start ngrok tunnel", "error", tunnelErr)
		}
	}

	select {
	case <-ctx.Done():
		log.Infow("shutting down relay")
	case err = <-serveErr:
		log.Errorw("relay stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = multierr.Append(err, httpServer.Shutdown(shutdownCtx))
	if tunnel != nil {
		err = multierr.Append(err, tunnel.Close())
	}
	return err
}

// startTunnel exposes handler through ngrok.
func startTunnel(ctx context.Context, cfg config.Ngrok, handler http.Handler, log *zap.SugaredLogger) (ngrok.Tunnel, error) {
	var endpoint ngrokConfig.Tunnel
	if cfg.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		return nil, err
	}

	log.Infow("ngrok tunnel established",
		"url", tun.URL(),
		"api", tun.URL()+"/api",
		"websocket", tun.URL()+"/ws",
	)

	go func() {
		if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnw("ngrok server stopped", "error", err)
		}
	}()
	return tun, nil
}
