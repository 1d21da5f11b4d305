// sightline is the terminal console for a Sightline monitoring server. It
// shows session status, the alert log, the camera feed, and the wake-word
// banner, and drives session start and stop.
package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/sightline/console/internal/app"
	"github.com/sightline/console/internal/client"
	"github.com/sightline/console/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, wsURL, token, logFile string

	flagSet := pflag.NewFlagSet("sightline", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "config.yaml", "path to config file")
	flagSet.StringVar(&wsURL, "url", "", "websocket URL of the Sightline server (overrides config)")
	flagSet.StringVar(&token, "token", "", "auth token, if the server requires one")
	flagSet.StringVar(&logFile, "log-file", "", "write logs to this file (overrides config)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if wsURL != "" {
		cfg.Console.URL = wsURL
	}
	if token != "" {
		cfg.Console.Token = token
	}
	if logFile != "" {
		cfg.Console.LogFile = logFile
	}

	// The terminal belongs to the UI, so logs go to a file.
	f, err := os.OpenFile(cfg.Console.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Console.Level()})))

	httpBase := deriveHTTPBase(cfg.Console.URL)
	slog.Info("console starting", "ws", cfg.Console.URL, "http", httpBase)

	ws := client.NewWSClient(cfg.Console.URL, cfg.Console.Token)
	defer ws.Close()
	httpClient := client.NewHTTPClient(httpBase, cfg.Console.Token)

	m := app.New(ws, httpClient, cfg.Console.Binding())
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// deriveHTTPBase converts ws://host:port/ws to http://host:port.
func deriveHTTPBase(wsURL string) string {
	u, err := url.Parse(wsURL)
	if err != nil || u.Host == "" {
		return "http://127.0.0.1:5000"
	}
	scheme := "http"
	if strings.HasPrefix(u.Scheme, "wss") || u.Scheme == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, u.Host)
}
