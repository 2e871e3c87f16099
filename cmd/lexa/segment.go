package main

import (
	"context"
	"fmt"

	"github.com/cpslyse/lexaudit/internal/article"
	"github.com/cpslyse/lexaudit/internal/textsource"
	"github.com/spf13/cobra"
)

var segmentMinLength int

func init() {
	rootCmd.AddCommand(segmentCmd)
	segmentCmd.Flags().IntVar(&segmentMinLength, "min-length", -1, "Drop articles with content at or below this many characters (default: keep all)")
}

// SegmentResult is the response for the segment command.
type SegmentResult struct {
	Source    string           `json:"source"`
	PageCount int              `json:"page_count"`
	Articles  []article.Record `json:"articles"`
}

var segmentCmd = &cobra.Command{
	Use:   "segment <file>",
	Short: "Split a document into articles",
	Long: `Extract the text of a PDF or plain text file and split it into articles.

Does not need a workspace or an embedding backend.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func runSegment(cmd *cobra.Command, args []string) error {
	doc, err := textsource.Extract(context.Background(), args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	records := article.Segment(doc.Text)
	if segmentMinLength >= 0 {
		records = article.Filter(records, segmentMinLength)
	}

	if !humanOutput {
		outputJSON(SegmentResult{Source: doc.Name, PageCount: doc.PageCount, Articles: records})
		return nil
	}

	fmt.Printf("%s: %d article(s), %d page(s)\n\n", doc.Name, len(records), doc.PageCount)
	for _, r := range records {
		fmt.Printf("Article %s\n", r.Number)
		fmt.Printf("  %s\n\n", wrapText(r.Content, TextWrapWidth, "  "))
	}
	return nil
}
