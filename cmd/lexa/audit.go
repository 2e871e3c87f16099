package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cpslyse/lexaudit/internal/ingest"
	"github.com/spf13/cobra"
)

var auditTop int

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().IntVarP(&auditTop, "top", "n", 0, "Matches per article (default: top_n from config)")
	auditCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Suppress progress output")
}

var auditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Find the nearest decree articles for each article of a document",
	Long: `Segment an uploaded document and, for each article, list the most
similar reference decree articles.

Scores are reported as-is; no compliance verdict is drawn from them.
The document is recorded in the registry but not added to the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	topN := auditTop
	if topN <= 0 {
		topN = cfg.TopN
	}

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

	report, err := pipeline.Audit(ctx, args[0], topN)
	if showProgress {
		clearProgress()
	}
	if err != nil {
		exitWithError(exitCodeFor(err), "auditing %s: %v", args[0], err)
	}

	if !humanOutput {
		outputJSON(report)
		return nil
	}

	if store.Len() == 0 {
		fmt.Fprintln(os.Stderr, "Warning: the decree store is empty. Run 'lexa decree add' first.")
	}
	fmt.Printf("%s: %d article(s) compared, %d too short\n\n", report.Source, len(report.Articles), report.Skipped)
	for _, a := range report.Articles {
		fmt.Printf("Article %s: %s\n", a.Number, truncateString(a.Content, ContentMaxLen))
		printMatchesHuman(a.Matches, "  ")
		fmt.Println()
	}
	return nil
}
