package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/lexaudit/config.yml.
type GlobalConfig struct {
	OllamaURL           string  `yaml:"ollama_url,omitempty"`
	EmbeddingModel      string  `yaml:"embedding_model,omitempty"`
	EmbeddingDimensions int     `yaml:"embedding_dimensions,omitempty"`
	RequestsPerSecond   float64 `yaml:"requests_per_second,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "lexaudit"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override the global config file.
const (
	EnvOllamaURL           = "LEXA_OLLAMA_URL"
	EnvEmbeddingModel      = "LEXA_EMBEDDING_MODEL"
	EnvEmbeddingDimensions = "LEXA_EMBEDDING_DIMENSIONS"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/lexaudit/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the
// file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	globalConfigCache = cfg
	return cfg, nil
}

func (c *GlobalConfig) applyEnv() error {
	if v := os.Getenv(EnvOllamaURL); v != "" {
		c.OllamaURL = v
	}
	if v := os.Getenv(EnvEmbeddingModel); v != "" {
		c.EmbeddingModel = v
	}
	if v := os.Getenv(EnvEmbeddingDimensions); v != "" {
		dims, err := strconv.Atoi(v)
		if err != nil || dims < 0 {
			return fmt.Errorf("invalid %s: %q", EnvEmbeddingDimensions, v)
		}
		c.EmbeddingDimensions = dims
	}
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}
