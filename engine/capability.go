package engine

import (
	"context"

	"github.com/elenia-ai/elenia-go-sdk/core"
	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// EmotionAnalyzer classifies the emotional content of a user turn.
type EmotionAnalyzer interface {
	AnalyzeEmotion(ctx context.Context, text string) (core.EmotionSignal, error)
}

// ContextAnalyzer interprets the current turn against retrieved
// memories.
type ContextAnalyzer interface {
	AnalyzeContext(ctx context.Context, text string, recent []memory.Record) (core.ContextSignal, error)
}

// Categorizer assigns a category and importance to a completed
// exchange before it is stored.
type Categorizer interface {
	Categorize(ctx context.Context, text, response string) (core.Categorization, error)
}

// Summarizer condenses stored exchanges into short prose.
type Summarizer interface {
	Summarize(ctx context.Context, records []memory.Record, maxLength int) (string, error)
}

// Generator produces the assistant's reply from an assembled prompt.
// An empty reply with a nil error means the model chose not to answer.
type Generator interface {
	Generate(ctx context.Context, turns []core.Turn) (string, error)
}
