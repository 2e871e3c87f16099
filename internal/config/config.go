// Package config handles workspace and global configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpslyse/lexaudit/internal/article"
)

// Config represents workspace configuration stored in .lexaudit/config.json.
type Config struct {
	StoreFile        string `json:"store_file"`         // Embedding store, relative to the workspace dir
	RegistryFile     string `json:"registry_file"`      // SQLite document registry
	TopN             int    `json:"top_n"`              // Default number of matches per query
	MinArticleLength int    `json:"min_article_length"` // Articles at or below this length are not embedded
}

const (
	WorkspaceDir = ".lexaudit"
	ConfigFile   = "config.json"

	DefaultStoreFile    = "vector_store_data.json"
	DefaultRegistryFile = "registry.db"
	DefaultTopN         = 3
)

// Default returns the configuration written by `lexa init`.
func Default() *Config {
	return &Config{
		StoreFile:        DefaultStoreFile,
		RegistryFile:     DefaultRegistryFile,
		TopN:             DefaultTopN,
		MinArticleLength: article.DefaultMinContentLength,
	}
}

// WorkspacePath returns the path to the .lexaudit directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, WorkspaceDir, ConfigFile)
}

// StorePath returns the embedding store path for the workspace at root.
func (c *Config) StorePath(root string) string {
	return c.resolve(root, c.StoreFile)
}

// RegistryPath returns the document registry path for the workspace at root.
func (c *Config) RegistryPath(root string) string {
	return c.resolve(root, c.RegistryFile)
}

func (c *Config) resolve(root, name string) string {
	name = ExpandPath(name)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(WorkspacePath(root), name)
}

// IsWorkspace checks if the given path contains a lexaudit workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a lexaudit workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a lexaudit workspace (no %s directory found)", WorkspaceDir)
		}
		abs = parent
	}
}

// Load reads configuration from the workspace at the given root.
// Missing or zero fields take their default values.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.StoreFile == "" {
		c.StoreFile = def.StoreFile
	}
	if c.RegistryFile == "" {
		c.RegistryFile = def.RegistryFile
	}
	if c.TopN <= 0 {
		c.TopN = def.TopN
	}
	if c.MinArticleLength < 0 {
		c.MinArticleLength = def.MinArticleLength
	}
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
