package memory

import (
	"math"
	"sort"
)

// Scored pairs a record with its raw and importance-adjusted similarity.
type Scored struct {
	Record     Record
	Similarity float64
	Adjusted   float64
}

// Rank scores candidates against a query vector and returns at most
// maxItems results, best first.
//
// The adjusted score is similarity × (1 + importance): a high-importance
// record outranks an equally-similar low-importance one, but importance
// only scales the raw similarity, it never replaces it. The sort is
// stable, so ties keep insertion order and results stay deterministic.
//
// Candidates whose stored vector is missing or has the wrong length are
// skipped, not fatal; the skip count is returned so callers can log it.
func Rank(query []float32, candidates []Record, maxItems int) (results []Scored, skipped int) {
	if maxItems <= 0 {
		maxItems = DefaultMaxResults
	}

	results = make([]Scored, 0, len(candidates))
	for _, rec := range candidates {
		if len(rec.Embedding) == 0 || len(rec.Embedding) != len(query) {
			skipped++
			continue
		}
		sim := CosineSimilarity(query, rec.Embedding)
		results = append(results, Scored{
			Record:     rec,
			Similarity: sim,
			Adjusted:   sim * (1 + clampImportance(rec.Importance)),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Adjusted > results[j].Adjusted
	})

	if len(results) > maxItems {
		results = results[:maxItems]
	}
	return results, skipped
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// A zero-magnitude vector on either side yields 0 rather than NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
