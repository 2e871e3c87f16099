package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/cpslyse/lexaudit/internal/vecstore"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeInfoCmd)
	storeCmd.AddCommand(storeCheckCmd)
}

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the embedding store",
	Long:  `Commands for inspecting the persisted decree embedding store.`,
}

// StoreInfoResponse is the response for store info command.
type StoreInfoResponse struct {
	Path      string         `json:"path"`
	Entries   int            `json:"entries"`
	Dimension int            `json:"dimension"`
	SizeBytes int64          `json:"size_bytes"`
	Sources   map[string]int `json:"sources"`
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show store size and dimension",
	Args:  cobra.NoArgs,
	RunE:  runStoreInfo,
}

func runStoreInfo(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	path := cfg.StorePath(root)

	snap, err := vecstore.Load(path)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	info := StoreInfoResponse{
		Path:      path,
		Entries:   snap.Len(),
		Dimension: snap.Dimension(),
		Sources:   make(map[string]int),
	}
	if fi, err := os.Stat(path); err == nil {
		info.SizeBytes = fi.Size()
	}
	for _, m := range snap.Metadatas() {
		info.Sources[m.Source]++
	}

	if !humanOutput {
		outputJSON(info)
		return nil
	}

	fmt.Printf("Store: %s\n", info.Path)
	fmt.Printf("  Articles: %d\n", info.Entries)
	fmt.Printf("  Dimension: %d\n", info.Dimension)
	fmt.Printf("  Size: %s\n", formatBytes(info.SizeBytes))
	if len(info.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for src, n := range info.Sources {
			fmt.Printf("  %s: %d\n", src, n)
		}
	}
	return nil
}

// StoreCheckResult is the response for store check command.
type StoreCheckResult struct {
	Status         string `json:"status"`
	Path           string `json:"path"`
	Entries        int    `json:"entries"`
	Dimension      int    `json:"dimension"`
	Problem        string `json:"problem,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

var storeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the store file is readable and consistent",
	Long: `Validate the store file without modifying it.

Exits with code 3 if the file is corrupt. A missing file is reported as empty.`,
	Args: cobra.NoArgs,
	RunE: runStoreCheck,
}

func runStoreCheck(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	path := cfg.StorePath(root)

	result := StoreCheckResult{Status: "healthy", Path: path}
	exitCode := ExitSuccess

	snap, err := vecstore.Load(path)
	switch {
	case err == nil:
		result.Entries = snap.Len()
		result.Dimension = snap.Dimension()
		if snap.Len() == 0 {
			result.Status = "empty"
			result.Recommendation = "Run 'lexa decree add' to ingest reference decrees"
		}
	case errors.Is(err, vecstore.ErrCorruptStore):
		result.Status = "corrupt"
		result.Problem = err.Error()
		result.Recommendation = "The next 'lexa decree add' keeps the file as " + path + ".corrupt-<timestamp> and starts a new store"
		exitCode = ExitDataError
	default:
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Store Status: %s\n\n", result.Status)
		fmt.Printf("  Path: %s\n", result.Path)
		fmt.Printf("  Articles: %d\n", result.Entries)
		fmt.Printf("  Dimension: %d\n", result.Dimension)
		if result.Problem != "" {
			fmt.Printf("  Problem: %s\n", result.Problem)
		}
		if result.Recommendation != "" {
			fmt.Printf("\n%s\n", result.Recommendation)
		}
	} else {
		outputJSON(result)
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}
