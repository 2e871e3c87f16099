package main

import (
	"fmt"
	"os"

	"github.com/cpslyse/lexaudit/internal/config"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new lexaudit workspace",
	Long: `Initialize a new lexaudit workspace in the current directory.

Creates .lexaudit/ with config.json and an empty document registry.
The embedding store file is created by the first 'lexa decree add'.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "workspace already initialized at %s", config.WorkspacePath(root))
	}

	if err := os.MkdirAll(config.WorkspacePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.WorkspaceDir, err)
	}

	cfg := config.Default()
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db, err := registry.OpenDB(cfg.RegistryPath(root))
	if err != nil {
		exitWithError(ExitError, "creating registry: %v", err)
	}
	db.Close()

	if humanOutput {
		fmt.Printf("Initialized lexaudit workspace in %s\n", config.WorkspacePath(root))
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: config.WorkspacePath(root)})
	}
	return nil
}
