// Package memory stores past exchanges as vector-embedded records and
// ranks them by relevance to a new query.
//
// A Record holds the user text, the agent's response, and an embedding of
// the user text computed once at write time. Ranking is cosine similarity
// adjusted by stored importance (similarity × (1 + importance)), so
// memories the categorizer judged important surface ahead of equally
// similar mundane ones.
//
// Architecture:
//   - Store: bounded, durable record collection (SnapshotStore here,
//     chromem-backed variant in memory/store/chromem)
//   - Embedder: text-to-vector conversion (mock for tests, ONNX for a
//     local model, ristretto cache decorator in memory/embedder/cache)
//   - Rank: the shared importance-adjusted similarity ordering
//
// The store is a FIFO-capped collection: appends beyond the cap evict the
// oldest record. Every mutation rewrites the full JSON snapshot before
// returning, so a loaded store always reflects every acknowledged write.
package memory
