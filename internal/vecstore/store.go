package vecstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Store is a file-backed, append-only embedding store.
//
// Inserts are serialized and each one rewrites the whole file atomically
// before it becomes visible. Readers get the last published Snapshot
// without taking the write lock.
//
// Several Stores, in one process or many, may share a file: an advisory
// lock on "<path>.lock" serializes their inserts, and an insert first
// reloads the file if another writer replaced it. Changes made by other
// writers become visible to a Store at its next insert.
type Store struct {
	path   string
	logger *slog.Logger
	newID  func() string
	now    func() time.Time

	// writeLock is a one-slot semaphore so that waiting writers can give up
	// when their context ends.
	writeLock chan struct{}
	current   atomic.Pointer[Snapshot]

	// Guarded by writeLock.
	diskState         os.FileInfo
	quarantinePending bool

	recovered error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator used for new entries.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// Open loads the store at path, creating an empty store if the file does not exist.
//
// A corrupt file does not fail Open: the problem is logged as a warning, the
// store starts empty, and Recovered returns the load error. The corrupt file
// is left in place until the first insert, which moves it aside to
// "<path>.corrupt-<timestamp>" before writing the new state.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:      path,
		logger:    slog.Default(),
		newID:     func() string { return uuid.NewString() },
		now:       time.Now,
		writeLock: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.diskState, _ = statFile(path)
	snap, err := Load(path)
	switch {
	case err == nil:
		s.current.Store(snap)
	case errors.Is(err, ErrCorruptStore):
		s.logger.Warn("embedding store is corrupt, starting empty",
			"path", path, "error", err)
		s.recovered = err
		s.quarantinePending = true
		s.current.Store(emptySnapshot())
	default:
		return nil, err
	}

	s.logger.Debug("embedding store opened",
		"path", path, "entries", s.Len(), "dimension", s.Dimension())
	return s, nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Recovered returns the error that caused Open to discard a corrupt file, or nil.
func (s *Store) Recovered() error {
	return s.recovered
}

// Snapshot returns the current published contents.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	return s.Snapshot().Len()
}

// Dimension returns the established embedding length, or 0 for an empty store.
func (s *Store) Dimension() int {
	return s.Snapshot().Dimension()
}

// Insert stores a decree article and its embedding.
// See InsertEntry for the rules applied to the embedding.
func (s *Store) Insert(ctx context.Context, text, articleNumber, source string, embedding []float64) (string, error) {
	return s.InsertEntry(ctx, text, Metadata{
		ArticleNumber: articleNumber,
		Source:        source,
		RecordType:    RecordDecree,
	}, embedding)
}

// InsertEntry appends text with its metadata and embedding and persists the
// store before returning the new entry's id.
//
// An empty embedding is not stored: InsertEntry returns "" and a nil error.
// An embedding whose length differs from the stored entries returns
// ErrDimensionMismatch. If the file cannot be written the error wraps
// ErrPersistenceWrite and the entry is not kept in memory either.
func (s *Store) InsertEntry(ctx context.Context, text string, meta Metadata, embedding []float64) (string, error) {
	if len(embedding) == 0 {
		s.logger.Debug("skipping insert without embedding",
			"article_number", meta.ArticleNumber, "source", meta.Source)
		return "", nil
	}
	if !ValidEmbedding(embedding) {
		return "", ErrInvalidEmbedding
	}
	if meta.RecordType == "" {
		meta.RecordType = RecordDecree
	}

	if err := s.lock(ctx); err != nil {
		return "", err
	}
	defer s.unlock()

	fileLock, err := acquireFileLock(ctx, s.path)
	if err != nil {
		return "", err
	}
	defer releaseFileLock(fileLock)

	cur, err := s.syncWithDisk()
	if err != nil {
		return "", err
	}
	if cur.Dimension() != 0 && len(embedding) != cur.Dimension() {
		return "", fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), cur.Dimension())
	}

	entry := Entry{
		ID:        s.newID(),
		Text:      text,
		Metadata:  meta,
		Embedding: append([]float64(nil), embedding...),
	}
	next := cur.with(entry)

	if err := s.persist(next); err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistenceWrite, err)
	}
	s.diskState, _ = statFile(s.path)
	s.current.Store(next)

	s.logger.Debug("stored embedding",
		"id", entry.ID, "article_number", meta.ArticleNumber, "source", meta.Source, "entries", next.Len())
	return entry.ID, nil
}

func (s *Store) persist(next *Snapshot) error {
	data, err := encode(next)
	if err != nil {
		return err
	}

	if s.quarantinePending {
		if err := s.quarantine(); err != nil {
			return err
		}
	}

	return writeFileAtomic(s.path, data)
}

// syncWithDisk returns the snapshot an insert builds on. If another writer
// replaced the file since this Store last read or wrote it, the file is
// loaded again and published first. Both locks must be held.
func (s *Store) syncWithDisk() (*Snapshot, error) {
	fi, err := statFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("checking store file: %w", err)
	}
	if sameFileState(fi, s.diskState) {
		return s.current.Load(), nil
	}

	snap, err := Load(s.path)
	switch {
	case err == nil:
		s.quarantinePending = false
	case errors.Is(err, ErrCorruptStore):
		s.logger.Warn("embedding store is corrupt, starting empty",
			"path", s.path, "error", err)
		snap = emptySnapshot()
		s.quarantinePending = true
	default:
		return nil, err
	}

	s.logger.Debug("embedding store changed on disk, reloaded",
		"path", s.path, "entries", snap.Len())
	s.diskState = fi
	s.current.Store(snap)
	return snap, nil
}

// quarantine moves the corrupt file aside so it survives for inspection.
func (s *Store) quarantine() error {
	dest := fmt.Sprintf("%s.corrupt-%s", s.path, s.now().UTC().Format("20060102T150405Z"))
	if err := os.Rename(s.path, dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("preserving corrupt store: %w", err)
	}
	s.logger.Warn("moved corrupt embedding store aside", "path", s.path, "preserved_as", dest)
	s.quarantinePending = false
	return nil
}

func (s *Store) lock(ctx context.Context) error {
	select {
	case s.writeLock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for store lock: %w", ctx.Err())
	}
}

func (s *Store) unlock() {
	<-s.writeLock
}
