// Package integration provides integration tests for lexa commands.
package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

var (
	lexaBinary     string
	lexaBinaryOnce sync.Once
	lexaBinaryErr  error
)

// getLexaBinary builds the lexa binary once and returns its path.
func getLexaBinary(t *testing.T) string {
	t.Helper()
	lexaBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			lexaBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "lexa-test-*")
		if err != nil {
			lexaBinaryErr = err
			return
		}
		lexaBinary = filepath.Join(tmpDir, "lexa")

		cmd := exec.Command("go", "build", "-o", lexaBinary, "./cmd/lexa")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			lexaBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if lexaBinaryErr != nil {
		t.Fatalf("failed to build lexa: %v", lexaBinaryErr)
	}
	return lexaBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// runLexa runs lexa in dir and returns stdout, stderr and the exit code.
func runLexa(t *testing.T, dir string, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(getLexaBinary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(dir, "config"),
		"LEXA_ROOT=",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("running lexa: %v", err)
	}
	return stdout.String(), stderr.String(), code
}

// setupWorkspace runs lexa init in a fresh directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if out, errOut, code := runLexa(t, dir, "init"); code != 0 {
		t.Fatalf("init failed (%d): %s %s", code, out, errOut)
	}
	return dir
}

const decreeText = `DECRET N° 2024-17
Article premier
Le présent décret fixe les conditions d'emploi.
Art. 2
Le salaire minimum est fixé par voie réglementaire.
--- Page 2 ---
ARTICLE III
Les congés payés sont accordés chaque année.
`

func TestInit(t *testing.T) {
	dir := setupWorkspace(t)

	if _, err := os.Stat(filepath.Join(dir, ".lexaudit", "config.json")); err != nil {
		t.Errorf("config.json not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".lexaudit", "registry.db")); err != nil {
		t.Errorf("registry.db not created: %v", err)
	}

	_, _, code := runLexa(t, dir, "init")
	if code != 1 {
		t.Errorf("second init exit code = %d, want 1", code)
	}
}

func TestSegment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "decree.txt")
	if err := os.WriteFile(path, []byte(decreeText), 0644); err != nil {
		t.Fatal(err)
	}

	out, errOut, code := runLexa(t, dir, "segment", path)
	if code != 0 {
		t.Fatalf("segment failed (%d): %s", code, errOut)
	}

	var result struct {
		Source   string `json:"source"`
		Articles []struct {
			Number  string `json:"article_number"`
			Content string `json:"content"`
		} `json:"articles"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}

	want := []string{"premier", "2", "III"}
	if len(result.Articles) != len(want) {
		t.Fatalf("got %d articles, want %d: %s", len(result.Articles), len(want), out)
	}
	for i, n := range want {
		if result.Articles[i].Number != n {
			t.Errorf("article %d number = %q, want %q", i, result.Articles[i].Number, n)
		}
	}
	if result.Articles[1].Content != "Le salaire minimum est fixé par voie réglementaire. --- Page 2 ---" {
		t.Errorf("article 2 content = %q", result.Articles[1].Content)
	}
}

func TestSegment_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.tiff")
	if err := os.WriteFile(path, []byte("II*"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, code := runLexa(t, dir, "segment", path); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestOutsideWorkspace(t *testing.T) {
	if _, _, code := runLexa(t, t.TempDir(), "store", "info"); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

// writeStore writes a store file with three 2-d entries.
func writeStore(t *testing.T, dir string) {
	t.Helper()
	content := `{
  "version": 1,
  "documents": ["Le contrat est écrit.", "Le contrat est signé.", "Les congés sont payés."],
  "metadatas": [
    {"article_number": "1", "source": "a.pdf", "type": "decree"},
    {"article_number": "2", "source": "a.pdf", "type": "decree"},
    {"article_number": "1", "source": "b.pdf", "type": "decree"}
  ],
  "embeddings": [[1, 0], [0.9, 0.1], [0, 1]],
  "ids": ["e1", "e2", "e3"]
}`
	path := filepath.Join(dir, ".lexaudit", "vector_store_data.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestStoreCheckAndInfo(t *testing.T) {
	dir := setupWorkspace(t)

	out, _, code := runLexa(t, dir, "store", "check")
	if code != 0 {
		t.Fatalf("store check on empty workspace exit code = %d", code)
	}
	var check struct {
		Status  string `json:"status"`
		Entries int    `json:"entries"`
	}
	if err := json.Unmarshal([]byte(out), &check); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if check.Status != "empty" {
		t.Errorf("status = %q, want empty", check.Status)
	}

	writeStore(t, dir)
	out, _, code = runLexa(t, dir, "store", "info")
	if code != 0 {
		t.Fatalf("store info exit code = %d", code)
	}
	var info struct {
		Entries   int            `json:"entries"`
		Dimension int            `json:"dimension"`
		Sources   map[string]int `json:"sources"`
	}
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if info.Entries != 3 || info.Dimension != 2 || info.Sources["a.pdf"] != 2 {
		t.Errorf("info = %+v", info)
	}
}

func TestStoreCheck_Corrupt(t *testing.T) {
	dir := setupWorkspace(t)
	path := filepath.Join(dir, ".lexaudit", "vector_store_data.json")
	if err := os.WriteFile(path, []byte(`{"documents": ["a"], "ids": []`), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, code := runLexa(t, dir, "store", "check")
	if code != 3 {
		t.Fatalf("exit code = %d, want 3\n%s", code, out)
	}

	// The check never touches the file.
	data, err := os.ReadFile(path)
	if err != nil || string(data) != `{"documents": ["a"], "ids": []` {
		t.Errorf("corrupt store was modified: %q, %v", data, err)
	}
}

func TestSimilar(t *testing.T) {
	dir := setupWorkspace(t)
	writeStore(t, dir)

	out, errOut, code := runLexa(t, dir, "similar", "e1", "--top", "2")
	if code != 0 {
		t.Fatalf("similar failed (%d): %s", code, errOut)
	}

	var resp struct {
		Matches []struct {
			ID         string  `json:"id"`
			Similarity float64 `json:"similarity"`
		} `json:"matches"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(resp.Matches) != 2 || resp.Matches[0].ID != "e2" || resp.Matches[1].ID != "e3" {
		t.Errorf("matches = %+v, want e2 then e3", resp.Matches)
	}

	if _, _, code := runLexa(t, dir, "similar", "missing"); code != 1 {
		t.Errorf("unknown entry exit code = %d, want 1", code)
	}
}

func TestDecreeList_Empty(t *testing.T) {
	dir := setupWorkspace(t)

	out, _, code := runLexa(t, dir, "decree", "list")
	if code != 0 {
		t.Fatalf("decree list exit code = %d", code)
	}
	var docs []map[string]any
	if err := json.Unmarshal([]byte(out), &docs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(docs) != 0 {
		t.Errorf("expected no decrees, got %d", len(docs))
	}
}
