package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings bridge needs to reach a backend and store files.
type Config struct {
	BackendOrigin string
	WebOrigin     string
	PollInterval  time.Duration
	ItemsPerPage  int
	DownloadDir   string
	LogFile       string
}

const (
	defaultConfigPath    = "~/.config/bridge/config.toml"
	defaultBackendOrigin = "http://127.0.0.1:5000"
	defaultPollInterval  = time.Second
	defaultItemsPerPage  = 5
	defaultDownloadDir   = "~/Downloads/bridge"
	defaultLogFile       = "~/.local/state/bridge/bridge.log"

	minPollInterval = 100 * time.Millisecond
	maxItemsPerPage = 100
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BackendOrigin: defaultBackendOrigin,
		WebOrigin:     defaultBackendOrigin,
		PollInterval:  defaultPollInterval,
		ItemsPerPage:  defaultItemsPerPage,
		DownloadDir:   mustExpand(defaultDownloadDir),
		LogFile:       mustExpand(defaultLogFile),
	}
}

// Load locates and parses the bridge config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BackendOrigin  string `toml:"backend_origin"`
		WebOrigin      string `toml:"web_origin"`
		PollIntervalMS int    `toml:"poll_interval_ms"`
		ItemsPerPage   int    `toml:"items_per_page"`
		DownloadDir    string `toml:"download_dir"`
		LogFile        string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if origin := strings.TrimSpace(raw.BackendOrigin); origin != "" {
		cfg.BackendOrigin = origin
	}
	cfg.WebOrigin = strings.TrimSpace(raw.WebOrigin)
	if cfg.WebOrigin == "" {
		cfg.WebOrigin = cfg.BackendOrigin
	}
	if raw.PollIntervalMS > 0 {
		cfg.PollInterval = time.Duration(raw.PollIntervalMS) * time.Millisecond
	}
	if raw.ItemsPerPage > 0 {
		cfg.ItemsPerPage = raw.ItemsPerPage
	}
	if dir := strings.TrimSpace(raw.DownloadDir); dir != "" {
		cfg.DownloadDir = mustExpand(dir)
	}
	if logFile := strings.TrimSpace(raw.LogFile); logFile != "" {
		cfg.LogFile = mustExpand(logFile)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BackendOrigin) == "" {
		return fmt.Errorf("backend_origin is empty")
	}
	if c.PollInterval < minPollInterval {
		return fmt.Errorf("poll interval %s is below %s", c.PollInterval, minPollInterval)
	}
	if c.ItemsPerPage < 1 || c.ItemsPerPage > maxItemsPerPage {
		return fmt.Errorf("items_per_page %d out of range 1..%d", c.ItemsPerPage, maxItemsPerPage)
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes path absolute.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
