package chromem_test

import (
	"context"
	"testing"

	"github.com/elenia-ai/elenia-go-sdk/memory"
	"github.com/elenia-ai/elenia-go-sdk/memory/store/chromem"
)

// axisEmbedder maps known texts to fixed unit vectors so similarity is
// predictable.
type axisEmbedder struct {
	vectors map[string][]float32
}

func (e *axisEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if vec, ok := e.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func (e *axisEmbedder) Dimensions() int { return 3 }

func newAxisEmbedder() *axisEmbedder {
	return &axisEmbedder{vectors: map[string][]float32{
		"café":    {1, 0, 0},
		"lunes":   {0, 1, 0},
		"cafeína": {0.95, 0.05, 0},
	}}
}

func TestStore_AppendAndQuery(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New(newAxisEmbedder())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	if _, err := store.Append(ctx, "café", "me encanta", memory.CategoryPersonal, 0.5, nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.Append(ctx, "lunes", "qué pereza", memory.CategoryTemporal, 0.5, nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	results, err := store.QueryRelevant(ctx, "cafeína", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 || results[0].Text != "café" {
		t.Errorf("got %+v, want the coffee record", results)
	}
}

func TestStore_EmptyQuery(t *testing.T) {
	store, err := chromem.New(newAxisEmbedder())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	results, err := store.QueryRelevant(context.Background(), "café", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if results != nil {
		t.Errorf("empty store should return nil, got %d results", len(results))
	}
}

func TestStore_ImportanceReRanks(t *testing.T) {
	ctx := context.Background()
	embedder := &axisEmbedder{vectors: map[string][]float32{
		"a":     {1, 0, 0},
		"b":     {1, 0, 0},
		"query": {1, 0, 0},
	}}
	store, err := chromem.New(embedder)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	store.Append(ctx, "a", "ok", memory.CategoryTemporal, 0.1, nil)
	store.Append(ctx, "b", "ok", memory.CategoryTemporal, 0.9, nil)

	results, err := store.QueryRelevant(ctx, "query", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 || results[0].Text != "b" {
		t.Errorf("high-importance record should rank first, got %+v", results)
	}
}

func TestStore_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New(newAxisEmbedder(), chromem.WithMaxItems(2))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	store.Append(ctx, "uno", "ok", memory.CategoryTemporal, 0.5, nil)
	store.Append(ctx, "dos", "ok", memory.CategoryTemporal, 0.5, nil)
	store.Append(ctx, "tres", "ok", memory.CategoryTemporal, 0.5, nil)

	if store.Len() != 2 {
		t.Fatalf("len = %d, want 2", store.Len())
	}
	recent := store.Recent(10, "")
	if recent[0].Text != "dos" || recent[1].Text != "tres" {
		t.Errorf("oldest record should be gone, got %+v", recent)
	}
}

func TestStore_FailedAddLeavesIndexIntact(t *testing.T) {
	ctx := context.Background()
	embedder := &axisEmbedder{vectors: map[string][]float32{
		"uno": {1, 0, 0},
		"dos": {0, 1, 0},
		"":    nil,
	}}
	store, err := chromem.New(embedder, chromem.WithMaxItems(1))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	first, err := store.Append(ctx, "uno", "ok", memory.CategoryTemporal, 0.5, nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	// A record with no text and no embedding is rejected by the collection;
	// the store must look exactly as it did before the attempt.
	if _, err := store.Append(ctx, "", "ok", memory.CategoryTemporal, 0.5, nil); err == nil {
		t.Fatal("append should fail for an unembeddable record")
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, want 1 after failed append", store.Len())
	}
	recent := store.Recent(1, "")
	if len(recent) != 1 || recent[0].ID != first.ID {
		t.Fatalf("store should still hold the first record, got %+v", recent)
	}
	results, err := store.QueryRelevant(ctx, "uno", 1)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 1 || results[0].ID != first.ID {
		t.Errorf("first record should still be queryable, got %+v", results)
	}

	next, err := store.Append(ctx, "dos", "ok", memory.CategoryTemporal, 0.5, nil)
	if err != nil {
		t.Fatalf("append after failure: %v", err)
	}
	if next.ID != first.ID+1 {
		t.Errorf("ID = %d, want %d: failed add must not consume an ID", next.ID, first.ID+1)
	}
	if store.Len() != 1 || store.Recent(1, "")[0].Text != "dos" {
		t.Errorf("cap should now evict the oldest, got %+v", store.Recent(1, ""))
	}
}

func TestStore_UpdateImportance(t *testing.T) {
	ctx := context.Background()
	store, err := chromem.New(newAxisEmbedder())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer store.Close()

	rec, err := store.Append(ctx, "café", "ok", memory.CategoryTemporal, 0.2, nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	if !store.UpdateImportance(ctx, rec.ID, 0.9) {
		t.Fatal("update should find the record")
	}
	if got := store.Recent(1, "")[0].Importance; got != 0.9 {
		t.Errorf("importance = %f, want 0.9", got)
	}
	if store.UpdateImportance(ctx, 424242, 0.5) {
		t.Error("unknown ID should report false")
	}
}
