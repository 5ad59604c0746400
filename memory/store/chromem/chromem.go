// Package chromem provides a memory.Store backed by chromem-go, a pure Go
// embedded vector database. It honors the same contract as the JSON
// snapshot store (importance-adjusted ranking, FIFO cap, insertion
// order) while delegating the similarity search itself to chromem.
//
// The store is in-process and volatile; use the snapshot store when the
// memory must survive restarts.
package chromem

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	chromem "github.com/philippgille/chromem-go"

	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// overfetch widens the chromem query so re-ranking by importance has
// enough candidates to reorder.
const overfetch = 4

// Store implements memory.Store on top of a chromem collection.
type Store struct {
	collection *chromem.Collection
	embedder   memory.Embedder
	maxItems   int
	logger     *log.Logger

	mu     sync.RWMutex
	byID   map[uint64]memory.Record
	order  []uint64
	nextID uint64
}

// Option configures a Store.
type Option func(*Store)

// WithMaxItems overrides the FIFO cap (default memory.DefaultMaxItems).
func WithMaxItems(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxItems = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an in-memory chromem-backed store.
func New(embedder memory.Embedder, opts ...Option) (*Store, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("exchanges", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s := &Store{
		collection: col,
		embedder:   embedder,
		maxItems:   memory.DefaultMaxItems,
		logger:     log.Default().WithPrefix("chromem"),
		byID:       make(map[uint64]memory.Record),
		nextID:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// QueryRelevant implements memory.Store.
func (s *Store) QueryRelevant(ctx context.Context, query string, maxItems int) ([]memory.Record, error) {
	if maxItems <= 0 {
		maxItems = memory.DefaultMaxResults
	}

	s.mu.RLock()
	count := len(s.order)
	s.mu.RUnlock()
	if count == 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// chromem rejects nResults above the collection size.
	n := maxItems * overfetch
	if n > count {
		n = count
	}
	results, err := s.collection.QueryEmbedding(ctx, vec, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	type scored struct {
		rec      memory.Record
		adjusted float64
	}
	scoredResults := make([]scored, 0, len(results))
	s.mu.RLock()
	for _, r := range results {
		id, err := strconv.ParseUint(r.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping result with malformed id", "id", r.ID)
			continue
		}
		rec, ok := s.byID[id]
		if !ok {
			continue
		}
		scoredResults = append(scoredResults, scored{
			rec:      rec,
			adjusted: float64(r.Similarity) * (1 + rec.Importance),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(scoredResults, func(i, j int) bool {
		return scoredResults[i].adjusted > scoredResults[j].adjusted
	})
	if len(scoredResults) > maxItems {
		scoredResults = scoredResults[:maxItems]
	}

	out := make([]memory.Record, len(scoredResults))
	for i, sc := range scoredResults {
		out[i] = sc.rec
	}
	return out, nil
}

// Append implements memory.Store.
func (s *Store) Append(ctx context.Context, text, response string, category memory.Category, importance float64, tags []string) (memory.Record, error) {
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return memory.Record{}, fmt.Errorf("embed text: %w", err)
	}
	if category == "" {
		category = memory.CategoryTemporal
	}
	if importance < 0 {
		importance = 0
	} else if importance > 1 {
		importance = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := memory.Record{
		ID:         s.nextID,
		Text:       text,
		Response:   response,
		Embedding:  vec,
		Timestamp:  time.Now(),
		Category:   category,
		Importance: importance,
		Tags:       tags,
	}

	// Write to the collection before touching the index, so a failed add
	// leaves the store exactly as it was.
	if err := s.collection.AddDocument(ctx, s.document(rec)); err != nil {
		return memory.Record{}, fmt.Errorf("add document: %w", err)
	}

	s.nextID++
	s.byID[rec.ID] = rec
	s.order = append(s.order, rec.ID)

	for len(s.order) > s.maxItems {
		oldest := s.order[0]
		if err := s.collection.Delete(ctx, nil, nil, strconv.FormatUint(oldest, 10)); err != nil {
			s.logger.Warn("evict document failed", "id", oldest, "error", err)
		}
		s.order = s.order[1:]
		delete(s.byID, oldest)
	}

	return rec, nil
}

// Recent implements memory.Store.
func (s *Store) Recent(limit int, category memory.Category) []memory.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pool []memory.Record
	for _, id := range s.order {
		rec := s.byID[id]
		if category != "" && rec.Category != category {
			continue
		}
		pool = append(pool, rec)
	}
	if limit > 0 && len(pool) > limit {
		pool = pool[len(pool)-limit:]
	}
	return pool
}

// UpdateImportance implements memory.Store. The chromem document is
// re-added under the same ID so query-side importance stays in sync.
func (s *Store) UpdateImportance(ctx context.Context, id uint64, importance float64) bool {
	if importance < 0 {
		importance = 0
	} else if importance > 1 {
		importance = 1
	}

	s.mu.Lock()
	rec, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	rec.Importance = importance
	s.byID[id] = rec
	s.mu.Unlock()

	if err := s.collection.AddDocument(ctx, s.document(rec)); err != nil {
		s.logger.Warn("refresh document failed", "id", id, "error", err)
	}
	return true
}

// Len implements memory.Store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Close implements memory.Store.
func (s *Store) Close() error {
	return nil
}

func (s *Store) document(rec memory.Record) chromem.Document {
	return chromem.Document{
		ID:        strconv.FormatUint(rec.ID, 10),
		Content:   rec.Text,
		Embedding: rec.Embedding,
		Metadata: map[string]string{
			"category":   string(rec.Category),
			"importance": strconv.FormatFloat(rec.Importance, 'f', -1, 64),
			"timestamp":  rec.Timestamp.Format(time.RFC3339),
			"tags":       strings.Join(rec.Tags, ","),
		},
	}
}
