// Package main provides the lexa CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cpslyse/lexaudit/internal/config"
	"github.com/cpslyse/lexaudit/internal/embedding"
	"github.com/cpslyse/lexaudit/internal/logging"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/cpslyse/lexaudit/internal/textsource"
	"github.com/cpslyse/lexaudit/internal/vecstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
)

// EnvRoot overrides the directory the workspace search starts from.
const EnvRoot = "LEXA_ROOT"

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lexa",
	Short: "Compare legal documents against reference decrees",
	Long: `lexa splits legal documents into articles and compares them with a
corpus of reference decree articles using embedding similarity.

Core features:
  - Article segmentation of PDF and plain text documents
  - Decree ingestion into a persisted embedding store
  - Per-article nearest decree lookup for uploaded documents

Embeddings are computed by a local Ollama server.
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug information to stderr")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a workspace.
// Checks LEXA_ROOT first, then the current working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv(EnvRoot); root != "" {
		return config.ExpandPath(root), 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindWorkspace finds the workspace root, exits on error.
func mustFindWorkspace() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindWorkspace(start)
	if err != nil {
		exitWithError(ExitConfigError, "%v\n\nRun 'lexa init' to create a workspace.", err)
	}
	return root
}

// mustLoadConfig loads workspace configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenStore opens the embedding store, exits on error.
// A corrupt store file is reported on stderr and the store starts empty.
func mustOpenStore(root string, cfg *config.Config) *vecstore.Store {
	store, err := vecstore.Open(cfg.StorePath(root), vecstore.WithLogger(logging.Logger()))
	if err != nil {
		exitWithError(exitCodeFor(err), "opening store: %v", err)
	}
	if rerr := store.Recovered(); rerr != nil && humanOutput {
		fmt.Fprintf(os.Stderr, "Warning: %v\nStarting with an empty store; the file is kept until the next insert.\n", rerr)
	}
	return store
}

// mustOpenRegistry opens the SQLite document registry, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenRegistry(root string, cfg *config.Config) *registry.DB {
	db, err := registry.OpenDB(cfg.RegistryPath(root))
	if err != nil {
		exitWithError(ExitError, "opening registry: %v", err)
	}
	return db
}

// mustLoadGlobalConfig loads the global config, exits on error.
func mustLoadGlobalConfig() *config.GlobalConfig {
	gcfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading global config: %v", err)
	}
	return gcfg
}

// newProvider builds the Ollama provider from the global config.
func newProvider(gcfg *config.GlobalConfig) *embedding.OllamaProvider {
	var opts []embedding.OllamaOption
	if gcfg.OllamaURL != "" {
		opts = append(opts, embedding.WithBaseURL(gcfg.OllamaURL))
	}
	if gcfg.EmbeddingModel != "" {
		opts = append(opts, embedding.WithModel(gcfg.EmbeddingModel))
	}
	if gcfg.EmbeddingDimensions > 0 {
		opts = append(opts, embedding.WithDimensions(gcfg.EmbeddingDimensions))
	}
	if gcfg.RequestsPerSecond > 0 {
		opts = append(opts, embedding.WithRateLimit(gcfg.RequestsPerSecond))
	}
	return embedding.NewOllamaProvider(opts...)
}

// mustValidateOllama checks that Ollama is running and has the embedding model.
func mustValidateOllama(ctx context.Context, provider *embedding.OllamaProvider) {
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitBackendUnavailable, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitBackendUnavailable, "checking model availability: %v", err)
	}
	if !hasModel {
		exitWithError(ExitBackendUnavailable, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
	}
}

// exitCodeFor maps domain errors to exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, vecstore.ErrDimensionMismatch):
		return ExitDimensionMismatch
	case errors.Is(err, vecstore.ErrCorruptStore),
		errors.Is(err, vecstore.ErrUnsupportedFormat),
		errors.Is(err, textsource.ErrUnsupportedFormat):
		return ExitDataError
	default:
		return ExitError
	}
}
