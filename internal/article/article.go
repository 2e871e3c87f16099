// Package article splits legal document text into numbered articles.
package article

import (
	"regexp"
	"strings"
)

// NumberUnknown is the article number given to text that has no article header.
const NumberUnknown = "N/A"

// DefaultMinContentLength is the content length at or below which an article
// is considered too short to be worth embedding.
const DefaultMinContentLength = 10

// Record is one article extracted from a document.
type Record struct {
	Number  string `json:"article_number"`
	Content string `json:"content"`
}

// headerPattern matches "Article 1", "ART. 2", "Art.3", "Article premier",
// "ARTICLE IV" and "Article 1er" at the start of a line. Digit locators take
// only the digits, so "Article 12bis" is article "12". Roman locators must
// end at a word boundary, so "Article Important" is not article "I".
var headerPattern = regexp.MustCompile(`(?im)^[ \t]*(?:article|art)(?:\.[ \t]*|\s+)(\d+|premier|first|[ivx]+\b)(?:er)?`)

var newlineRuns = regexp.MustCompile(`(?:\r?\n)+`)

// Segment splits raw text into articles in document order.
//
// Each record's content runs from the end of its header to the start of the
// next header, with newline runs collapsed to a single space. A header that
// appears inside another article's body starts a new record.
// Text without any header yields a single record numbered NumberUnknown.
func Segment(rawText string) []Record {
	matches := headerPattern.FindAllStringSubmatchIndex(rawText, -1)
	if len(matches) == 0 {
		return []Record{{Number: NumberUnknown, Content: strings.TrimSpace(rawText)}}
	}

	records := make([]Record, 0, len(matches))
	for i, m := range matches {
		end := len(rawText)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		records = append(records, Record{
			Number:  rawText[m[2]:m[3]],
			Content: normalize(rawText[m[1]:end]),
		})
	}
	return records
}

// Filter returns the records whose content is longer than minLen characters.
func Filter(records []Record, minLen int) []Record {
	kept := make([]Record, 0, len(records))
	for _, r := range records {
		if len([]rune(r.Content)) > minLen {
			kept = append(kept, r)
		}
	}
	return kept
}

func normalize(s string) string {
	return strings.TrimSpace(newlineRuns.ReplaceAllString(s, " "))
}
