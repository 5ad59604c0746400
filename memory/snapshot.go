package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// SnapshotStore keeps every record in memory and mirrors the whole
// collection to a single JSON file on each mutation. No write is
// acknowledged until the snapshot hits disk; the rewrite goes through a
// temp file and a rename so a crash never leaves a torn snapshot.
type SnapshotStore struct {
	path     string
	embedder Embedder
	maxItems int
	logger   *log.Logger

	mu      sync.RWMutex
	records []Record
	nextID  uint64
}

// SnapshotOption configures a SnapshotStore.
type SnapshotOption func(*SnapshotStore)

// WithMaxItems overrides the FIFO cap (default DefaultMaxItems).
func WithMaxItems(n int) SnapshotOption {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *log.Logger) SnapshotOption {
	return func(s *SnapshotStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSnapshotStore opens (or initializes) the snapshot at path. A missing
// or unparseable snapshot yields an empty store, never an error: a corrupt
// memory file must not stop the agent from starting. An empty path keeps
// the store purely in-memory.
func NewSnapshotStore(path string, embedder Embedder, opts ...SnapshotOption) *SnapshotStore {
	s := &SnapshotStore{
		path:     path,
		embedder: embedder,
		maxItems: DefaultMaxItems,
		logger:   log.Default().WithPrefix("memory"),
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *SnapshotStore) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("snapshot unreadable, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		s.logger.Warn("snapshot corrupt, starting empty", "path", s.path, "error", err)
		return
	}
	s.records = records
	for _, rec := range records {
		if rec.ID >= s.nextID {
			s.nextID = rec.ID + 1
		}
	}
	s.logger.Debug("snapshot loaded", "records", len(records))
}

// save rewrites the full snapshot. Callers must hold s.mu.
func (s *SnapshotStore) save() error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// QueryRelevant implements Store.
func (s *SnapshotStore) QueryRelevant(ctx context.Context, query string, maxItems int) ([]Record, error) {
	s.mu.RLock()
	candidates := make([]Record, len(s.records))
	copy(candidates, s.records)
	s.mu.RUnlock()

	// Empty store: short-circuit before spending an embedding call.
	if len(candidates) == 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, skipped := Rank(vec, candidates, maxItems)
	if skipped > 0 {
		s.logger.Warn("skipped records with malformed embeddings", "count", skipped)
	}

	out := make([]Record, len(scored))
	for i, sc := range scored {
		out[i] = sc.Record
	}
	s.logger.Debug("relevance query", "candidates", len(candidates), "returned", len(out))
	return out, nil
}

// Append implements Store.
func (s *SnapshotStore) Append(ctx context.Context, text, response string, category Category, importance float64, tags []string) (Record, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return Record{}, fmt.Errorf("embed text: %w", err)
	}
	if category == "" {
		category = CategoryTemporal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		ID:         s.nextID,
		Text:       text,
		Response:   response,
		Embedding:  vec,
		Timestamp:  time.Now(),
		Category:   category,
		Importance: clampImportance(importance),
		Tags:       tags,
	}
	prev := s.records
	s.nextID++
	s.records = append(s.records, rec)

	// FIFO cap: drop from the front until back within bound.
	if len(s.records) > s.maxItems {
		s.records = s.records[len(s.records)-s.maxItems:]
	}

	if err := s.save(); err != nil {
		// Restore the pre-append view, evicted records included, so an
		// unpersisted write is never acknowledged.
		s.records = prev
		s.nextID--
		return Record{}, err
	}

	s.logger.Debug("record appended", "id", rec.ID, "category", rec.Category, "total", len(s.records))
	return rec, nil
}

// Recent implements Store.
func (s *SnapshotStore) Recent(limit int, category Category) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pool []Record
	if category == "" {
		pool = s.records
	} else {
		for _, rec := range s.records {
			if rec.Category == category {
				pool = append(pool, rec)
			}
		}
	}
	if limit > 0 && len(pool) > limit {
		pool = pool[len(pool)-limit:]
	}
	out := make([]Record, len(pool))
	copy(out, pool)
	return out
}

// UpdateImportance implements Store.
func (s *SnapshotStore) UpdateImportance(ctx context.Context, id uint64, importance float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].ID != id {
			continue
		}
		prev := s.records[i].Importance
		s.records[i].Importance = clampImportance(importance)
		if err := s.save(); err != nil {
			s.records[i].Importance = prev
			s.logger.Error("persist importance update failed", "id", id, "error", err)
			return false
		}
		return true
	}
	return false
}

// Len implements Store.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close implements Store. The snapshot is already current after every
// mutation, so there is nothing to flush.
func (s *SnapshotStore) Close() error {
	return nil
}
