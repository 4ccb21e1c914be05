package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// DefaultQuery is the search issued when no query override is configured.
const DefaultQuery = "stock market OR finance OR bitcoin OR earnings"

type Config struct {
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
	Feeds   []Feed        `yaml:"feeds"`
	Extract Extract       `yaml:"extract"`
	Output  Output        `yaml:"output"`
	Server  Server        `yaml:"server"`
	Logging Logging       `yaml:"logging"`
}

type NewsAPIConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Query     string `yaml:"query"`
	Language  string `yaml:"language"`
	PageSize  int    `yaml:"page_size"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type Extract struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for finsent.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "finsent")
}

// DataDir returns the XDG data directory for finsent.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "finsent")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/finsent/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'finsent init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		NewsAPI: NewsAPIConfig{
			APIKeyEnv: "NEWSAPI_KEY",
			Query:     DefaultQuery,
			Language:  "en",
			PageSize:  15,
		},
		Extract: Extract{TimeoutSeconds: 15},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
