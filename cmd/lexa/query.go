package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cpslyse/lexaudit/internal/similarity"
	"github.com/spf13/cobra"
)

var (
	queryTop   int
	similarTop int
)

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(similarCmd)

	queryCmd.Flags().IntVarP(&queryTop, "top", "n", 0, "Number of matches (default: top_n from config)")
	similarCmd.Flags().IntVarP(&similarTop, "top", "n", 0, "Number of matches (default: top_n from config)")
}

// QueryResponse is the response for the query and similar commands.
type QueryResponse struct {
	Query   string             `json:"query,omitempty"`
	EntryID string             `json:"entry_id,omitempty"`
	Matches []similarity.Match `json:"matches"`
}

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Find decree articles similar to a text",
	Long: `Embed the given text and list the most similar decree articles.

Requires Ollama to be running with the embedding model available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.Join(args, " ")
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	topN := queryTop
	if topN <= 0 {
		topN = cfg.TopN
	}

	provider := newProvider(mustLoadGlobalConfig())
	mustValidateOllama(ctx, provider)

	emb, err := provider.Embed(ctx, text)
	if err != nil {
		exitWithError(ExitBackendUnavailable, "embedding query: %v", err)
	}

	store := mustOpenStore(root, cfg)
	matches, err := similarity.New(store).Query(emb.Vector, topN)
	if err != nil {
		exitWithError(exitCodeFor(err), "querying store: %v", err)
	}

	if humanOutput {
		printMatchesHuman(matches, "")
		return nil
	}
	outputJSON(QueryResponse{Query: text, Matches: matches})
	return nil
}

var similarCmd = &cobra.Command{
	Use:   "similar <entry-id>",
	Short: "Find decree articles similar to a stored article",
	Long: `List the stored decree articles closest to the article with the given
store id, excluding the article itself. Does not need an embedding backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	topN := similarTop
	if topN <= 0 {
		topN = cfg.TopN
	}

	store := mustOpenStore(root, cfg)
	matches, err := similarity.New(store).FindSimilar(args[0], topN)
	if errors.Is(err, similarity.ErrEntryNotFound) {
		exitWithError(ExitError, "entry %s not found in store", args[0])
	}
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		entry, _ := store.Snapshot().Entry(args[0])
		fmt.Printf("Article %s (%s)\n\n", entry.Metadata.ArticleNumber, entry.Metadata.Source)
		printMatchesHuman(matches, "")
		return nil
	}
	outputJSON(QueryResponse{EntryID: args[0], Matches: matches})
	return nil
}
