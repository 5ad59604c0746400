package memory

import "context"

// Default bounds, matching the long-standing snapshot format.
const (
	// DefaultMaxItems caps the durable store; insertion beyond the cap
	// evicts the oldest record (FIFO, not LRU).
	DefaultMaxItems = 1000

	// DefaultMaxResults bounds how many records a relevance query returns.
	DefaultMaxResults = 5
)

// Embedder converts text to a fixed-dimension vector.
// Implementations: mock (testing), onnx (local model), cache (ristretto
// decorator over either).
type Embedder interface {
	// Embed converts a single text to an embedding vector. It must be
	// deterministic for a fixed model: the same text always yields the
	// same vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}

// Store is the durable, bounded memory of past exchanges.
// Implementations: SnapshotStore (JSON snapshot file, the default) and
// the chromem-backed store in memory/store/chromem.
type Store interface {
	// QueryRelevant embeds the query and returns up to maxItems records
	// ranked by importance-adjusted cosine similarity. An empty store
	// returns nil immediately without calling the embedder.
	QueryRelevant(ctx context.Context, query string, maxItems int) ([]Record, error)

	// Append embeds text, builds a record stamped with the current time,
	// stores it, and enforces the FIFO cap. The write is persisted before
	// Append returns.
	Append(ctx context.Context, text, response string, category Category, importance float64, tags []string) (Record, error)

	// Recent returns the last limit records, oldest first. A non-empty
	// category restricts the result to that category.
	Recent(limit int, category Category) []Record

	// UpdateImportance revises the importance of the record with the
	// given ID and persists. It reports whether a record was found.
	UpdateImportance(ctx context.Context, id uint64, importance float64) bool

	// Len returns the number of stored records.
	Len() int

	// Close releases resources.
	Close() error
}
