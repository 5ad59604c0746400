// Package engine runs the reply pipeline: analyze the user's turn,
// retrieve relevant memories, assemble the prompt, generate a reply,
// and commit the exchange to memory and conversation history.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/elenia-ai/elenia-go-sdk/analysis"
	"github.com/elenia-ai/elenia-go-sdk/conversation"
	"github.com/elenia-ai/elenia-go-sdk/core"
	"github.com/elenia-ai/elenia-go-sdk/memory"
	"github.com/elenia-ai/elenia-go-sdk/personality"
)

// Engine orchestrates one utterance end to end. A single logical
// caller drives Run; the engine does not pipeline concurrent turns.
type Engine struct {
	store       memory.Store
	personality *personality.State
	buffer      *conversation.Buffer

	emotion     EmotionAnalyzer
	contextual  ContextAnalyzer
	categorizer Categorizer
	summarizer  Summarizer
	generator   Generator

	persona        string
	maxRelevant    int
	summarizeAfter int
	logger         *log.Logger
	metrics        analysis.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPersona replaces the base system prompt.
func WithPersona(persona string) Option {
	return func(e *Engine) {
		if persona != "" {
			e.persona = persona
		}
	}
}

// WithMaxRelevant caps how many memories are retrieved per turn.
func WithMaxRelevant(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRelevant = n
		}
	}
}

// WithSummarizeAfter sets the recent-exchange count above which prior
// context is summarized.
func WithSummarizeAfter(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.summarizeAfter = n
		}
	}
}

// WithSummarizer attaches an optional conversation summarizer.
func WithSummarizer(s Summarizer) Option {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder for the generation call.
func WithMetrics(m analysis.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New assembles an engine from its collaborators. store, state,
// buffer, the three analyzers, and the generator are required.
func New(store memory.Store, state *personality.State, buffer *conversation.Buffer, emotion EmotionAnalyzer, contextual ContextAnalyzer, categorizer Categorizer, generator Generator, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		personality:    state,
		buffer:         buffer,
		emotion:        emotion,
		contextual:     contextual,
		categorizer:    categorizer,
		generator:      generator,
		persona:        DefaultPersona,
		maxRelevant:    memory.DefaultMaxResults,
		summarizeAfter: DefaultSummarizeAfter,
		logger:         log.Default().WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes one user turn and returns the reply. priorContext is
// caller-supplied conversational context (see RecentContext) and may be
// empty.
//
// Analysis failures are absorbed: the pipeline substitutes neutral
// defaults and continues. A generation failure is the only fatal path,
// and it leaves memory, conversation history, and personality state
// untouched. An empty reply means the model declined to answer; the
// exchange is not committed.
func (e *Engine) Run(ctx context.Context, text, priorContext string) (string, error) {
	start := time.Now()
	if e.metrics != nil {
		e.metrics.RecordRequest("main")
	}

	// Emotion analysis. On failure the default signal shapes the
	// prompt but the personality state is left untouched, so a failed
	// run has no side effects.
	emotionSignal, err := e.emotion.AnalyzeEmotion(ctx, text)
	if err != nil {
		e.logger.Warn("emotion analysis failed, using neutral default", "error", err)
		emotionSignal = core.DefaultEmotionSignal()
	} else {
		e.personality.UpdateEmotion(emotionSignal.Emotion, emotionSignal.Intensity)
	}

	relevant, err := e.store.QueryRelevant(ctx, text, e.maxRelevant)
	if err != nil {
		e.logger.Warn("memory retrieval failed, continuing without memories", "error", err)
		relevant = nil
	}

	ctxSignal, err := e.contextual.AnalyzeContext(ctx, text, relevant)
	if err != nil {
		e.logger.Warn("context analysis failed, using neutral default", "error", err)
		ctxSignal = core.DefaultContextSignal()
	}

	turns := buildInstructions(e.persona, e.personality.PromptLine(), ctxSignal, priorContext, relevant, e.buffer.Snapshot(), text)

	reply, err := e.generator.Generate(ctx, turns)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordError("main")
		}
		return "", fmt.Errorf("generate reply: %w", err)
	}

	if e.metrics != nil {
		e.metrics.RecordResponseTime("main", float64(time.Since(start).Milliseconds()))
	}

	if reply == "" {
		e.logger.Debug("model declined to answer, skipping commit")
		return "", nil
	}

	e.commit(ctx, text, reply)
	return reply, nil
}

// commit stores the finished exchange. Categorization failures fall
// back to a default category; storage failures are logged and absorbed
// so the caller still gets the reply.
func (e *Engine) commit(ctx context.Context, text, reply string) {
	cat, err := e.categorizer.Categorize(ctx, text, reply)
	if err != nil {
		e.logger.Warn("categorization failed, using default", "error", err)
		cat = core.DefaultCategorization()
	}

	if _, err := e.store.Append(ctx, text, reply, memory.Category(cat.Category), cat.Importance, cat.Tags); err != nil {
		e.logger.Error("memory append failed", "error", err)
	} else if e.metrics != nil {
		e.metrics.RecordMemoryOperation("add")
	}

	e.buffer.AppendExchange(text, reply)
}
