package article

import (
	"reflect"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Record
	}{
		{
			name:  "mixed header styles",
			input: "Article 1\nThe first rule.\nArt. 2\nThe second\nrule.\nARTICLE III\nThe third rule.",
			expected: []Record{
				{Number: "1", Content: "The first rule."},
				{Number: "2", Content: "The second rule."},
				{Number: "III", Content: "The third rule."},
			},
		},
		{
			name:  "premier and leading whitespace",
			input: "  Article premier\nLe présent décret fixe les règles.\n\tArticle 2\nIl entre en vigueur.",
			expected: []Record{
				{Number: "premier", Content: "Le présent décret fixe les règles."},
				{Number: "2", Content: "Il entre en vigueur."},
			},
		},
		{
			name:  "ordinal suffix and no space after period",
			input: "Article 1er - Objet\nArt.2 Champ d'application",
			expected: []Record{
				{Number: "1", Content: "- Objet"},
				{Number: "2", Content: "Champ d'application"},
			},
		},
		{
			name:  "preamble before first header is dropped",
			input: "DECRET N° 2024-01\nVu la loi\nArticle 1\nTexte.",
			expected: []Record{
				{Number: "1", Content: "Texte."},
			},
		},
		{
			name:  "header must start a line",
			input: "Article 1\nSee article 2 of the law.\nArticle 3\nEnd.",
			expected: []Record{
				{Number: "1", Content: "See article 2 of the law."},
				{Number: "3", Content: "End."},
			},
		},
		{
			name:  "word starting with roman letter is not a header",
			input: "Article 1\nBody.\nArticle Important notice\nMore body.",
			expected: []Record{
				{Number: "1", Content: "Body. Article Important notice More body."},
			},
		},
		{
			name:  "digit locator with suffix",
			input: "Article 12\nFirst body text.\nArticle 12bis\nInserted article body.\nArticle 1A\nAnother.",
			expected: []Record{
				{Number: "12", Content: "First body text."},
				{Number: "12", Content: "bis Inserted article body."},
				{Number: "1", Content: "A Another."},
			},
		},
		{
			name:  "page markers are ordinary text",
			input: "Article 1\nDébut\n--- Page 2 ---\nsuite\nArticle 2\nFin",
			expected: []Record{
				{Number: "1", Content: "Début --- Page 2 --- suite"},
				{Number: "2", Content: "Fin"},
			},
		},
		{
			name:  "windows line endings",
			input: "Article 1\r\nLine one\r\n\r\nline two\r\nArticle 2\r\nLast",
			expected: []Record{
				{Number: "1", Content: "Line one line two"},
				{Number: "2", Content: "Last"},
			},
		},
		{
			name:  "header with empty body",
			input: "Article 1\nArticle 2\nText",
			expected: []Record{
				{Number: "1", Content: ""},
				{Number: "2", Content: "Text"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Segment(%q) =\n  %#v\nwant\n  %#v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSegment_NoHeaders(t *testing.T) {
	got := Segment("  no headers here\n")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Number != NumberUnknown {
		t.Errorf("Number = %q, want %q", got[0].Number, NumberUnknown)
	}
	if got[0].Content != "no headers here" {
		t.Errorf("Content = %q, want %q", got[0].Content, "no headers here")
	}
}

func TestSegment_Empty(t *testing.T) {
	got := Segment("")
	if len(got) != 1 || got[0].Number != NumberUnknown || got[0].Content != "" {
		t.Errorf("Segment(\"\") = %#v", got)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	input := "Article 1\nA.\nArt. 2\nB.\nARTICLE III\nC.\nArticle 1\nD."
	first := Segment(input)
	for i := 0; i < 10; i++ {
		if got := Segment(input); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %#v vs %#v", i, got, first)
		}
	}
	// Repeated numbering is kept as separate records.
	if len(first) != 4 {
		t.Errorf("expected 4 records, got %d", len(first))
	}
}

func TestFilter(t *testing.T) {
	records := []Record{
		{Number: "1", Content: "short"},
		{Number: "2", Content: "exactly 10"},
		{Number: "3", Content: "long enough content"},
		{Number: "4", Content: "éééééééééé"},
	}

	got := Filter(records, DefaultMinContentLength)
	if len(got) != 1 || got[0].Number != "3" {
		t.Errorf("Filter() = %#v, want only article 3", got)
	}

	if got := Filter(nil, DefaultMinContentLength); len(got) != 0 {
		t.Errorf("Filter(nil) = %#v, want empty", got)
	}
}
