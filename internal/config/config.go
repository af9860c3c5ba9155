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

// Config captures plakview's settings.
type Config struct {
	APIURL         string
	PageSize       int
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       string
	Theme          string
	StateFile      string
	DownloadDir    string
}

const (
	defaultConfigPath     = "~/.config/plakview/config.toml"
	defaultLogFile        = "~/.local/state/plakview/plakview.log"
	defaultStateFile      = "~/.config/plakview/state.toml"
	defaultDownloadDir    = "~/Downloads"
	defaultLogLevel       = "info"
	defaultTheme          = "Nightfox"
	defaultPageSize       = 10
	defaultRequestTimeout = 30 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		PageSize:       defaultPageSize,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       defaultLogLevel,
		Theme:          defaultTheme,
		StateFile:      mustExpand(defaultStateFile),
		DownloadDir:    mustExpand(defaultDownloadDir),
	}
}

// DefaultPath returns the expanded default config file location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

// Load locates and parses the config file, falling back to defaults when missing.
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
		APIURL         string `toml:"api_url"`
		PageSize       int    `toml:"page_size"`
		RequestTimeout string `toml:"request_timeout"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		Theme          string `toml:"theme"`
		StateFile      string `toml:"state_file"`
		DownloadDir    string `toml:"download_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIURL = strings.TrimSpace(raw.APIURL)
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if timeout := strings.TrimSpace(raw.RequestTimeout); timeout != "" {
		d, err := ParseTimeout(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: request_timeout: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	if theme := strings.TrimSpace(raw.Theme); theme != "" {
		cfg.Theme = theme
	}
	cfg.LogFile = pathOr(raw.LogFile, defaultLogFile)
	cfg.StateFile = pathOr(raw.StateFile, defaultStateFile)
	cfg.DownloadDir = pathOr(raw.DownloadDir, defaultDownloadDir)

	return cfg, nil
}

// ParseTimeout accepts a Go duration or a bare "0", which disables the timeout.
func ParseTimeout(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", value)
	}
	return d, nil
}

// Expand resolves "~" and makes path absolute.
func Expand(path string) (string, error) {
	return expandPath(path)
}

func pathOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return mustExpand(fallback)
	}
	return mustExpand(value)
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
