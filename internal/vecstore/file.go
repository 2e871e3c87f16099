package vecstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// fileDocument is the on-disk layout: four parallel sequences.
// The "documents" key holds the article texts.
type fileDocument struct {
	Version    int         `json:"version"`
	Texts      []string    `json:"documents"`
	Metadatas  []Metadata  `json:"metadatas"`
	Embeddings [][]float64 `json:"embeddings"`
	IDs        []string    `json:"ids"`
}

// Load reads the store file at path.
// A missing file is an empty store. Content that does not form four
// equal-length sequences of valid entries returns an error wrapping ErrCorruptStore.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptySnapshot(), nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}
	return decode(data)
}

func decode(data []byte) (*Snapshot, error) {
	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing: %v", ErrCorruptStore, err)
	}

	if doc.Version != 0 && doc.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %w: got %d, want %d", ErrCorruptStore, ErrUnsupportedFormat, doc.Version, CurrentVersion)
	}

	n := len(doc.IDs)
	if len(doc.Texts) != n || len(doc.Metadatas) != n || len(doc.Embeddings) != n {
		return nil, fmt.Errorf("%w: sequence lengths differ: documents=%d metadatas=%d embeddings=%d ids=%d",
			ErrCorruptStore, len(doc.Texts), len(doc.Metadatas), len(doc.Embeddings), n)
	}

	snap := &Snapshot{entries: make([]Entry, 0, n)}
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := doc.IDs[i]
		if id == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrCorruptStore, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCorruptStore, id)
		}
		seen[id] = struct{}{}

		emb := doc.Embeddings[i]
		if len(emb) == 0 {
			return nil, fmt.Errorf("%w: entry %s has an empty embedding", ErrCorruptStore, id)
		}
		if snap.dim == 0 {
			snap.dim = len(emb)
		} else if len(emb) != snap.dim {
			return nil, fmt.Errorf("%w: entry %s has %d dimensions, want %d", ErrCorruptStore, id, len(emb), snap.dim)
		}

		meta := doc.Metadatas[i]
		if meta.RecordType == "" {
			meta.RecordType = RecordDecree
		}
		snap.entries = append(snap.entries, Entry{
			ID:        id,
			Text:      doc.Texts[i],
			Metadata:  meta,
			Embedding: emb,
		})
	}

	return snap, nil
}

func encode(s *Snapshot) ([]byte, error) {
	doc := fileDocument{
		Version:    CurrentVersion,
		Texts:      s.Texts(),
		Metadatas:  s.Metadatas(),
		Embeddings: make([][]float64, len(s.entries)),
		IDs:        s.IDs(),
	}
	for i, e := range s.entries {
		doc.Embeddings[i] = e.Embedding
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding store: %w", err)
	}
	return buf.Bytes(), nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	syncDir(dir)
	return nil
}

// syncDir flushes the directory entry for a rename. Not every platform
// supports fsync on directories, so failures are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

// ValidEmbedding reports whether every component of v is a finite number.
func ValidEmbedding(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
