package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cpslyse/lexaudit/internal/ingest"
	"github.com/cpslyse/lexaudit/internal/registry"
	"github.com/spf13/cobra"
)

var noProgress bool

func init() {
	rootCmd.AddCommand(decreeCmd)
	decreeCmd.AddCommand(decreeAddCmd)
	decreeCmd.AddCommand(decreeListCmd)

	decreeAddCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Suppress progress output")
}

var decreeCmd = &cobra.Command{
	Use:   "decree",
	Short: "Manage reference decrees",
	Long:  `Commands for ingesting and listing the reference decrees that documents are compared against.`,
}

// DecreeAddResponse is the response for decree add command.
type DecreeAddResponse struct {
	Status          string           `json:"status"`
	Decrees         []*ingest.Result `json:"decrees"`
	Model           string           `json:"model"`
	StoreEntries    int              `json:"store_entries"`
	DurationSeconds float64          `json:"duration_seconds"`
}

var decreeAddCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Ingest reference decrees",
	Long: `Extract, segment and embed reference decrees and add their articles
to the embedding store.

Articles whose content is at or below min_article_length characters are
registered but not embedded. A decree whose text was already ingested is
skipped.

Requires Ollama to be running with the embedding model available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecreeAdd,
}

func runDecreeAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	provider := newProvider(mustLoadGlobalConfig())
	mustValidateOllama(ctx, provider)

	store := mustOpenStore(root, cfg)
	db := mustOpenRegistry(root, cfg)
	defer db.Close()

	pipeline := ingest.New(provider, store,
		ingest.WithRegistry(db),
		ingest.WithMinArticleLength(cfg.MinArticleLength),
	)
	showProgress := humanOutput && !noProgress
	if showProgress {
		pipeline.SetProgressReporter(ingest.ProgressFunc(printProgress))
	}

	start := time.Now()
	results := make([]*ingest.Result, 0, len(args))
	for _, path := range args {
		if showProgress {
			fmt.Fprintf(os.Stderr, "Ingesting %s...\n", path)
		}
		res, err := pipeline.AddDecree(ctx, path)
		if showProgress {
			clearProgress()
		}
		if err != nil {
			exitWithError(exitCodeFor(err), "ingesting %s: %v", path, err)
		}
		results = append(results, res)
	}

	if humanOutput {
		for _, r := range results {
			if r.Duplicate {
				fmt.Printf("%s: already ingested (document %s)\n", r.Source, r.DocumentID)
				continue
			}
			fmt.Printf("%s: %d article(s), %d embedded, %d skipped\n", r.Source, r.Articles, r.Embedded, r.Skipped)
		}
		fmt.Printf("\nStore now holds %d article(s). Time elapsed: %s\n", store.Len(), formatDuration(time.Since(start)))
		return nil
	}

	outputJSON(DecreeAddResponse{
		Status:          "complete",
		Decrees:         results,
		Model:           provider.ModelName(),
		StoreEntries:    store.Len(),
		DurationSeconds: time.Since(start).Seconds(),
	})
	return nil
}

var decreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested decrees",
	Args:  cobra.NoArgs,
	RunE:  runDecreeList,
}

func runDecreeList(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	db := mustOpenRegistry(root, cfg)
	defer db.Close()

	docs, err := db.ListDocuments(registry.KindDecree)
	if err != nil {
		exitWithError(ExitError, "listing decrees: %v", err)
	}

	if !humanOutput {
		if docs == nil {
			docs = []registry.Document{}
		}
		outputJSON(docs)
		return nil
	}

	if len(docs) == 0 {
		fmt.Println("No decrees ingested.")
		return nil
	}
	for _, d := range docs {
		fmt.Printf("%s  %-9s  %s  %d page(s)  %s\n",
			d.UploadedAt.Format(time.DateOnly), d.Status, d.ID, d.PageCount, d.Filename)
	}
	return nil
}
