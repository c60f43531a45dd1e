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

// Config captures Tally's runtime settings.
type Config struct {
	APIURL         string
	APIToken       string
	Session        string
	StoreBackend   string
	DataDir        string
	RequestTimeout time.Duration
}

const (
	defaultConfigPath     = "~/.config/tally/config.toml"
	defaultDataDir        = "~/.local/share/tally"
	defaultAPIURL         = "http://127.0.0.1:8080"
	defaultSession        = "active"
	defaultStoreBackend   = "sqlite"
	defaultRequestTimeout = 10 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		Session:        defaultSession,
		StoreBackend:   defaultStoreBackend,
		DataDir:        mustExpand(defaultDataDir),
		RequestTimeout: defaultRequestTimeout,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
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
		APIURL                string `toml:"api_url"`
		APIToken              string `toml:"api_token"`
		Session               string `toml:"session"`
		Store                 string `toml:"store"`
		DataDir               string `toml:"data_dir"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	if v := strings.TrimSpace(raw.Session); v != "" {
		cfg.Session = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.Store)); v != "" {
		switch v {
		case "sqlite", "yaml":
			cfg.StoreBackend = v
		default:
			return Config{}, fmt.Errorf("parse config: unknown store %q", raw.Store)
		}
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = mustExpand(v)
	}
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}

	return cfg, nil
}

// LogPath returns the path of the log file the app writes while the TUI owns
// the terminal.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.DataDir) == "" {
		return mustExpand(defaultDataDir + "/tally.log")
	}
	return filepath.Join(c.DataDir, "tally.log")
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
