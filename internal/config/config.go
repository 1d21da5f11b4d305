// Package config loads the YAML configuration shared by the console and
// the mock server.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sightline/console/internal/reconcile"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Console ConsoleConfig `yaml:"console"`
	Server  ServerConfig  `yaml:"server"`
	Mock    MockConfig    `yaml:"mock"`
}

// ConsoleConfig configures the terminal dashboard.
type ConsoleConfig struct {
	URL      string   `yaml:"url"` // websocket URL; the HTTP base is derived from it
	Token    string   `yaml:"token"`
	LogFile  string   `yaml:"log_file"`
	LogLevel string   `yaml:"log_level"`
	Regions  []string `yaml:"regions"` // any of status, alerts, camera, wake_word
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	Host      string `yaml:"host"`
	AuthToken string `yaml:"auth_token"`
}

// MockConfig tunes the simulated monitoring engine.
type MockConfig struct {
	AlertInterval     time.Duration `yaml:"alert_interval"`
	FrameInterval     time.Duration `yaml:"frame_interval"`
	WakeWordInterval  time.Duration `yaml:"wake_word_interval"`
	ListenDuration    time.Duration `yaml:"listen_duration"`
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	CameraFails       bool          `yaml:"camera_fails"`
}

func defaultConfig() *Config {
	return &Config{
		Console: ConsoleConfig{
			URL:      "ws://127.0.0.1:5000/ws",
			LogFile:  "sightline-console.log",
			LogLevel: "info",
			Regions:  []string{"status", "alerts", "camera", "wake_word"},
		},
		Server: ServerConfig{
			Port: 5000,
			Host: "127.0.0.1",
		},
		Mock: MockConfig{
			AlertInterval:     3 * time.Second,
			FrameInterval:     500 * time.Millisecond,
			WakeWordInterval:  20 * time.Second,
			ListenDuration:    3 * time.Second,
			InactivityTimeout: 5 * time.Minute,
		},
	}
}

// Load reads path over the defaults. A missing file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// Binding turns the configured region names into a view binding.
// Unknown names are ignored.
func (c ConsoleConfig) Binding() reconcile.ViewBinding {
	var b reconcile.ViewBinding
	for _, r := range c.Regions {
		switch strings.ToLower(strings.TrimSpace(r)) {
		case "status":
			b.Status = true
		case "alerts":
			b.Alerts = true
		case "camera":
			b.Camera = true
		case "wake_word", "wakeword":
			b.WakeWord = true
		}
	}
	return b
}

// Level parses LogLevel, defaulting to info.
func (c ConsoleConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
