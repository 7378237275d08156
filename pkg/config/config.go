package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "snapcal"
	configFile = "config.yaml"

	DefaultCalendar      = "primary"
	DefaultBaseURL       = "https://api.openai.com/v1"
	DefaultClassifyModel = "gpt-4o-mini"
	DefaultExtractModel  = "gpt-4o"
	DefaultMaxWidth      = 1920
	DefaultQuality       = 50
	DefaultTimeoutSec    = 30

	// APIKeyEnv overrides the stored API key when set.
	APIKeyEnv = "OPENAI_API_KEY"
)

type Config struct {
	Calendar string        `yaml:"calendar"`
	OpenAI   OpenAIConfig  `yaml:"openai"`
	Capture  CaptureConfig `yaml:"capture"`
}

type OpenAIConfig struct {
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	ClassifyModel string `yaml:"classify_model"`
	ExtractModel  string `yaml:"extract_model"`
}

type CaptureConfig struct {
	// RemoteURL is a Chrome DevTools websocket URL. When set the visible
	// page of that browser is captured.
	RemoteURL string `yaml:"remote_url"`
	// URL is rendered in headless Chromium when RemoteURL is empty.
	URL        string `yaml:"url"`
	MaxWidth   int    `yaml:"max_width"`
	Quality    int    `yaml:"quality"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Calendar == "" {
		c.Calendar = DefaultCalendar
	}
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = DefaultBaseURL
	}
	if c.OpenAI.ClassifyModel == "" {
		c.OpenAI.ClassifyModel = DefaultClassifyModel
	}
	if c.OpenAI.ExtractModel == "" {
		c.OpenAI.ExtractModel = DefaultExtractModel
	}
	if c.Capture.MaxWidth <= 0 {
		c.Capture.MaxWidth = DefaultMaxWidth
	}
	if c.Capture.Quality <= 0 || c.Capture.Quality > 100 {
		c.Capture.Quality = DefaultQuality
	}
	if c.Capture.TimeoutSec <= 0 {
		c.Capture.TimeoutSec = DefaultTimeoutSec
	}
}

// APIKey returns the key from the environment if set, otherwise the stored one.
func (c *Config) APIKey() string {
	if k := os.Getenv(APIKeyEnv); k != "" {
		return k
	}
	return c.OpenAI.APIKey
}

func GetXdgHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetXdgHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path through a temp file and rename, with 0600
// permissions since the file holds the API key.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapcal-config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
