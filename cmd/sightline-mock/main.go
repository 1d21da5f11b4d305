// sightline-mock serves a simulated Sightline monitoring engine over the
// same HTTP and websocket API as the real server, for driving the console
// without a camera.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/sightline/console/internal/config"
	"github.com/sightline/console/internal/mock"
	"github.com/sightline/console/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, logLevel string
	var port, maxClients int
	var cameraFails bool
	var origins []string

	flagSet := pflag.NewFlagSet("sightline-mock", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flagSet.IntVar(&port, "port", 0, "override server port")
	flagSet.IntVar(&maxClients, "max-clients", 0, "websocket connection limit (0 is unlimited)")
	flagSet.BoolVar(&cameraFails, "camera-fails", false, "fail every session start with a camera error")
	flagSet.StringSliceVar(&origins, "allowed-origin", nil, "extra allowed websocket origins")
	flagSet.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if cameraFails {
		cfg.Mock.CameraFails = true
	}

	broadcaster := ws.NewBroadcaster(maxClients)
	engine := mock.NewEngine(cfg.Mock, broadcaster)
	server := ws.NewServer(engine, broadcaster, origins, cfg.Server.AuthToken)
	httpServer := ws.NewHTTPServer(cfg.Server.Host, cfg.Server.Port, server.Handler())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("mock server listening", "addr", httpServer.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	engine.Shutdown()
	broadcaster.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
