package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/elenia-ai/elenia-go-sdk/conversation"
	"github.com/elenia-ai/elenia-go-sdk/core"
	"github.com/elenia-ai/elenia-go-sdk/engine"
	"github.com/elenia-ai/elenia-go-sdk/memory"
	"github.com/elenia-ai/elenia-go-sdk/personality"
)

// fakeEmbedder returns the same vector for everything, so every stored
// record is an equally good match.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}
func (fakeEmbedder) Dimensions() int { return 3 }

// fakeAnalyzer implements the three analysis capabilities with
// configurable failures.
type fakeAnalyzer struct {
	emotion    core.EmotionSignal
	emotionErr error
	ctxSignal  core.ContextSignal
	ctxErr     error
	cat        core.Categorization
	catErr     error
}

func (f *fakeAnalyzer) AnalyzeEmotion(context.Context, string) (core.EmotionSignal, error) {
	return f.emotion, f.emotionErr
}

func (f *fakeAnalyzer) AnalyzeContext(context.Context, string, []memory.Record) (core.ContextSignal, error) {
	return f.ctxSignal, f.ctxErr
}

func (f *fakeAnalyzer) Categorize(context.Context, string, string) (core.Categorization, error) {
	return f.cat, f.catErr
}

// fakeGenerator records the turns it was handed.
type fakeGenerator struct {
	reply string
	err   error
	turns []core.Turn
}

func (f *fakeGenerator) Generate(_ context.Context, turns []core.Turn) (string, error) {
	f.turns = turns
	return f.reply, f.err
}

// fakeSummarizer returns a fixed summary.
type fakeSummarizer struct {
	summary string
	err     error
}

func (f *fakeSummarizer) Summarize(context.Context, []memory.Record, int) (string, error) {
	return f.summary, f.err
}

func newTestEngine(t *testing.T, analyzer *fakeAnalyzer, gen *fakeGenerator, opts ...engine.Option) (*engine.Engine, *memory.SnapshotStore, *personality.State, *conversation.Buffer) {
	t.Helper()
	store := memory.NewSnapshotStore("", fakeEmbedder{})
	state := personality.New("")
	buffer := conversation.NewBuffer(10)
	eng := engine.New(store, state, buffer, analyzer, analyzer, analyzer, gen, opts...)
	return eng, store, state, buffer
}

func TestRun_HappyPathCommitsExchange(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion:   core.EmotionSignal{Emotion: "feliz", Intensity: 0.9},
		ctxSignal: core.ContextSignal{Topic: "saludo", UserEmotion: "feliz"},
		cat:       core.Categorization{Category: "personal", Importance: 0.8, Tags: []string{"saludo"}},
	}
	gen := &fakeGenerator{reply: "¡Hola! ¿Qué tal?"}
	eng, store, state, buffer := newTestEngine(t, analyzer, gen)

	reply, err := eng.Run(context.Background(), "hola elenia", "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if reply != "¡Hola! ¿Qué tal?" {
		t.Errorf("reply = %q", reply)
	}

	if store.Len() != 1 {
		t.Fatalf("store len = %d, want 1", store.Len())
	}
	rec := store.Recent(1, "")[0]
	if rec.Category != memory.CategoryPersonal || rec.Importance != 0.8 {
		t.Errorf("stored record = %+v", rec)
	}

	if buffer.Len() != 2 {
		t.Errorf("buffer len = %d, want 2", buffer.Len())
	}
	if state.Dominant() != "feliz" {
		t.Errorf("dominant = %q, want feliz", state.Dominant())
	}
}

func TestRun_InstructionOrdering(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion:   core.EmotionSignal{Emotion: "feliz", Intensity: 0.9},
		ctxSignal: core.ContextSignal{Topic: "viajes", UserEmotion: "feliz"},
		cat:       core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{reply: "ok"}
	eng, store, _, buffer := newTestEngine(t, analyzer, gen)

	// Pre-populate a memory and a history turn.
	if _, err := store.Append(context.Background(), "me gusta Roma", "¡Bonita ciudad!", memory.CategoryPersonal, 0.5, nil); err != nil {
		t.Fatal(err)
	}
	buffer.AppendExchange("pregunta previa", "respuesta previa")

	if _, err := eng.Run(context.Background(), "¿dónde viajo?", "contexto previo"); err != nil {
		t.Fatal(err)
	}

	turns := gen.turns
	if len(turns) != 8 {
		t.Fatalf("got %d turns: %+v", len(turns), turns)
	}

	// persona → personality → context analysis → prior context →
	// memories → history (2 turns) → user turn
	if turns[0].Role != core.RoleSystem || !strings.Contains(turns[0].Content, "Eres Elenia") {
		t.Errorf("turn 0 should be the persona, got %+v", turns[0])
	}
	if !strings.Contains(turns[1].Content, "Actualmente te sientes") {
		t.Errorf("turn 1 should be the personality line, got %q", turns[1].Content)
	}
	if !strings.Contains(turns[2].Content, "Tema principal: viajes") {
		t.Errorf("turn 2 should be the context analysis, got %q", turns[2].Content)
	}
	if !strings.Contains(turns[3].Content, "contexto previo") {
		t.Errorf("turn 3 should carry the prior context, got %q", turns[3].Content)
	}
	if !strings.Contains(turns[4].Content, "Usuario: me gusta Roma") {
		t.Errorf("turn 4 should carry the memory transcript, got %q", turns[4].Content)
	}
	if turns[5].Role != core.RoleUser || turns[5].Content != "pregunta previa" {
		t.Errorf("turn 5 should be buffered history, got %+v", turns[5])
	}
	if turns[7].Role != core.RoleUser || turns[7].Content != "¿dónde viajo?" {
		t.Errorf("last turn should be the live query, got %+v", turns[7])
	}
}

func TestRun_EmptySectionsOmitted(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion: core.EmotionSignal{Emotion: "neutral", Intensity: 0.5},
		cat:     core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{reply: "ok"}
	eng, _, _, _ := newTestEngine(t, analyzer, gen)

	if _, err := eng.Run(context.Background(), "hola", ""); err != nil {
		t.Fatal(err)
	}

	// No context signal, no prior context, no memories, no history:
	// persona + personality + user turn only.
	if len(gen.turns) != 3 {
		t.Fatalf("got %d turns, want 3: %+v", len(gen.turns), gen.turns)
	}
}

func TestRun_EmotionFailureLeavesStateUntouched(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotionErr: errors.New("analysis down"),
		cat:        core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{reply: "ok"}
	eng, _, state, _ := newTestEngine(t, analyzer, gen)

	before := state.Emotions()
	if _, err := eng.Run(context.Background(), "hola", ""); err != nil {
		t.Fatal(err)
	}
	after := state.Emotions()

	for label := range before {
		if before[label] != after[label] {
			t.Errorf("emotion %q changed from %f to %f on failed analysis", label, before[label], after[label])
		}
	}
}

func TestRun_ContextFailureUsesDefault(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion: core.EmotionSignal{Emotion: "neutral", Intensity: 0.5},
		ctxErr:  errors.New("analysis down"),
		cat:     core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{reply: "ok"}
	eng, _, _, _ := newTestEngine(t, analyzer, gen)

	reply, err := eng.Run(context.Background(), "hola", "")
	if err != nil {
		t.Fatalf("context failure must be absorbed: %v", err)
	}
	if reply != "ok" {
		t.Errorf("reply = %q", reply)
	}

	var found bool
	for _, turn := range gen.turns {
		if strings.Contains(turn.Content, "Tema principal: general") {
			found = true
		}
	}
	if !found {
		t.Error("default context signal should appear in the prompt")
	}
}

func TestRun_GenerationFailureLeavesEverythingUntouched(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion: core.EmotionSignal{Emotion: "neutral", Intensity: 0.5},
		cat:     core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{err: errors.New("api down")}
	eng, store, _, buffer := newTestEngine(t, analyzer, gen)

	reply, err := eng.Run(context.Background(), "hola", "")
	if err == nil {
		t.Fatal("generation failure must propagate")
	}
	if reply != "" {
		t.Errorf("reply = %q, want empty", reply)
	}
	if store.Len() != 0 {
		t.Errorf("store len = %d, want 0", store.Len())
	}
	if buffer.Len() != 0 {
		t.Errorf("buffer len = %d, want 0", buffer.Len())
	}
}

func TestRun_EmptyReplySkipsCommit(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion: core.EmotionSignal{Emotion: "neutral", Intensity: 0.5},
		cat:     core.Categorization{Category: "temporal", Importance: 0.5},
	}
	gen := &fakeGenerator{reply: ""}
	eng, store, _, buffer := newTestEngine(t, analyzer, gen)

	reply, err := eng.Run(context.Background(), "hablando con otra persona", "")
	if err != nil {
		t.Fatalf("empty reply is not an error: %v", err)
	}
	if reply != "" {
		t.Errorf("reply = %q", reply)
	}
	if store.Len() != 0 || buffer.Len() != 0 {
		t.Error("declined exchange must not be committed")
	}
}

func TestRun_CategorizationFailureUsesDefault(t *testing.T) {
	analyzer := &fakeAnalyzer{
		emotion: core.EmotionSignal{Emotion: "neutral", Intensity: 0.5},
		catErr:  errors.New("categorizer down"),
	}
	gen := &fakeGenerator{reply: "claro"}
	eng, store, _, _ := newTestEngine(t, analyzer, gen)

	if _, err := eng.Run(context.Background(), "hola", ""); err != nil {
		t.Fatal(err)
	}

	rec := store.Recent(1, "")[0]
	if rec.Category != memory.CategoryTemporal || rec.Importance != 0.5 {
		t.Errorf("default categorization expected, got %+v", rec)
	}
}

func TestRecentContext_ShortHistoryInlined(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	gen := &fakeGenerator{}
	eng, store, _, _ := newTestEngine(t, analyzer, gen, engine.WithSummarizer(&fakeSummarizer{summary: "resumen"}))

	ctx := context.Background()
	store.Append(ctx, "uno", "respuesta uno", memory.CategoryTemporal, 0.5, nil)
	store.Append(ctx, "dos", "respuesta dos", memory.CategoryTemporal, 0.5, nil)

	got := eng.RecentContext(ctx)
	if !strings.Contains(got, "Usuario: uno") || !strings.Contains(got, "Usuario: dos") {
		t.Errorf("short history should be inlined verbatim, got %q", got)
	}
	if strings.Contains(got, "Resumen") {
		t.Errorf("short history should not be summarized, got %q", got)
	}
}

func TestRecentContext_LongHistorySummarized(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	gen := &fakeGenerator{}
	eng, store, _, _ := newTestEngine(t, analyzer, gen, engine.WithSummarizer(&fakeSummarizer{summary: "hablamos de viajes"}))

	ctx := context.Background()
	for _, text := range []string{"uno", "dos", "tres", "cuatro", "cinco", "seis", "siete"} {
		store.Append(ctx, text, "respuesta "+text, memory.CategoryTemporal, 0.5, nil)
	}

	got := eng.RecentContext(ctx)
	if !strings.Contains(got, "Resumen de conversaciones anteriores:\nhablamos de viajes") {
		t.Errorf("long history should lead with the summary, got %q", got)
	}
	for _, text := range []string{"cinco", "seis", "siete"} {
		if !strings.Contains(got, "Usuario: "+text) {
			t.Errorf("newest exchanges should stay verbatim, missing %q in %q", text, got)
		}
	}
	if strings.Contains(got, "Usuario: uno\n") {
		t.Errorf("old exchanges should be folded into the summary, got %q", got)
	}
}

func TestRecentContext_SummarizerFailureFallsBack(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	gen := &fakeGenerator{}
	eng, store, _, _ := newTestEngine(t, analyzer, gen, engine.WithSummarizer(&fakeSummarizer{err: errors.New("down")}))

	ctx := context.Background()
	for _, text := range []string{"uno", "dos", "tres", "cuatro", "cinco", "seis"} {
		store.Append(ctx, text, "ok", memory.CategoryTemporal, 0.5, nil)
	}

	got := eng.RecentContext(ctx)
	if strings.Contains(got, "Resumen") {
		t.Errorf("failed summarization should fall back to a plain transcript, got %q", got)
	}
	if !strings.Contains(got, "Usuario: seis") {
		t.Errorf("fallback should keep the newest exchanges, got %q", got)
	}
}

func TestRecentContext_EmptyStore(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	eng, _, _, _ := newTestEngine(t, analyzer, &fakeGenerator{})

	if got := eng.RecentContext(context.Background()); got != "" {
		t.Errorf("empty store should yield empty context, got %q", got)
	}
}
