package textsource

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// fakePages serves page texts from memory; pages listed in broken fail to decode.
type fakePages struct {
	texts  []string
	broken map[int]bool
}

func (f fakePages) NumPage() int {
	return len(f.texts)
}

func (f fakePages) PageText(i int) (string, error) {
	if f.broken[i] {
		return "", errors.New("unknown font encoding")
	}
	return f.texts[i-1], nil
}

func TestReadPages(t *testing.T) {
	src := fakePages{texts: []string{"Article 1\nun", "", "Article 2\ndeux"}}

	text, pages, err := readPages(context.Background(), src, "decree.pdf", slog.Default())
	if err != nil {
		t.Fatalf("readPages failed: %v", err)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	want := PageMarker(1) + "Article 1\nun" + PageMarker(2) + PageMarker(3) + "Article 2\ndeux"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}
}

func TestReadPages_UndecodablePageIsLogged(t *testing.T) {
	src := fakePages{
		texts:  []string{"Article 1\nun", "lost", "Article 3\ntrois"},
		broken: map[int]bool{2: true},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	text, pages, err := readPages(context.Background(), src, "decree.pdf", logger)
	if err != nil {
		t.Fatalf("readPages failed: %v", err)
	}
	if pages != 3 {
		t.Errorf("pages = %d, want 3", pages)
	}
	want := PageMarker(1) + "Article 1\nun" + PageMarker(2) + PageMarker(3) + "Article 3\ntrois"
	if text != want {
		t.Errorf("text = %q, want %q", text, want)
	}

	out := logs.String()
	for _, s := range []string{"level=WARN", "page=2", "document=decree.pdf", "unknown font encoding"} {
		if !strings.Contains(out, s) {
			t.Errorf("log output %q missing %q", out, s)
		}
	}
}

func TestReadPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := readPages(ctx, fakePages{texts: []string{"a"}}, "decree.pdf", slog.Default())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
