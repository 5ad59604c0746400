// Package analysis runs the side-channel Claude calls that interpret a
// user turn before generation: emotion detection, context analysis,
// memory categorization, and conversation summarization. Each call is
// best-effort; callers substitute defaults when one fails.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/charmbracelet/log"

	"github.com/elenia-ai/elenia-go-sdk/core"
	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// DefaultModel is the analysis model when none is configured. Analysis
// calls are small and frequent, so they default to a fast model.
const DefaultModel = "claude-3-5-haiku-latest"

// DefaultMaxTokens bounds analysis responses, which are short JSON
// payloads or summaries.
const DefaultMaxTokens = 1024

// Service names used for metrics attribution.
const (
	ServiceEmotion     = "emotion"
	ServiceContext     = "context"
	ServiceCategorizer = "categorizer"
	ServiceSummarizer  = "summarizer"
)

const emotionSystemPrompt = "Eres un analizador de emociones y sentimientos. " +
	"Analiza el texto y devuelve un JSON con: " +
	"1. La emoción principal (feliz, triste, enojado, sorprendido, neutral) en el campo \"emotion\" " +
	"2. La intensidad (0.0 a 1.0) en el campo \"intensity\" " +
	"3. Palabras clave que indican la emoción en el campo \"keywords\" " +
	"4. Contexto emocional en el campo \"context\" " +
	"Responde SOLO con el JSON, sin texto adicional."

const contextSystemPrompt = "Eres un analizador de contexto. " +
	"Analiza el texto y el contexto histórico, y devuelve un JSON con: " +
	"1. Tema principal de la conversación en el campo \"topic\" " +
	"2. Estado emocional del usuario en el campo \"user_emotion\" " +
	"3. Patrones de interacción en el campo \"patterns\" " +
	"4. Sugerencias de respuesta en el campo \"suggestions\" " +
	"Responde SOLO con el JSON, sin texto adicional."

const categorizeSystemPrompt = "Eres un categorizador de memorias. " +
	"Analiza el texto y devuelve un JSON con: " +
	"1. Categoría principal (personal, temporal, importante) en el campo \"category\" " +
	"2. Importancia (0.0 a 1.0) en el campo \"importance\" " +
	"3. Etiquetas relevantes en el campo \"tags\" " +
	"4. Razón de la categorización en el campo \"reason\" " +
	"Responde SOLO con el JSON, sin texto adicional."

const summarizeSystemPrompt = "Eres un resumidor de conversaciones. " +
	"Crea un resumen conciso y relevante de la conversación, " +
	"manteniendo los puntos más importantes y el contexto emocional. " +
	"El resumen no debe exceder %d caracteres."

// Metrics receives usage accounting from analysis calls. The zero
// recorder (nil) disables accounting.
type Metrics interface {
	RecordRequest(service string)
	RecordAPIUsage(service string, tokens int)
	RecordResponseTime(service string, millis float64)
	RecordError(service string)
	RecordEmotion(label string)
	RecordMemoryOperation(op string)
}

// Client issues analysis requests against the Anthropic API.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	logger    *log.Logger
	metrics   Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithModel overrides the analysis model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the analysis response budget.
func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates an analysis client around an Anthropic API client.
func NewClient(client *anthropic.Client, opts ...Option) *Client {
	c := &Client{
		client:    client,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		logger:    log.Default().WithPrefix("analysis"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AnalyzeEmotion classifies the emotional content of a user turn.
func (c *Client) AnalyzeEmotion(ctx context.Context, text string) (core.EmotionSignal, error) {
	var signal core.EmotionSignal
	raw, err := c.complete(ctx, ServiceEmotion, emotionSystemPrompt, text, 0.3)
	if err != nil {
		return core.EmotionSignal{}, err
	}
	if err := decodeJSON(raw, &signal); err != nil {
		c.recordError(ServiceEmotion)
		return core.EmotionSignal{}, fmt.Errorf("decode emotion analysis: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordEmotion(signal.Emotion)
	}
	return signal, nil
}

// AnalyzeContext interprets the current turn against relevant memories.
func (c *Client) AnalyzeContext(ctx context.Context, text string, recent []memory.Record) (core.ContextSignal, error) {
	var sb strings.Builder
	for i, rec := range recent {
		fmt.Fprintf(&sb, "Memoria %d: %s -> %s\n", i+1, rec.Text, rec.Response)
	}
	prompt := fmt.Sprintf("Contexto:\n%s\nMensaje actual: %s", sb.String(), text)

	var signal core.ContextSignal
	raw, err := c.complete(ctx, ServiceContext, contextSystemPrompt, prompt, 0.3)
	if err != nil {
		return core.ContextSignal{}, err
	}
	if err := decodeJSON(raw, &signal); err != nil {
		c.recordError(ServiceContext)
		return core.ContextSignal{}, fmt.Errorf("decode context analysis: %w", err)
	}
	return signal, nil
}

// Categorize assigns a category and importance to a finished exchange.
func (c *Client) Categorize(ctx context.Context, text, response string) (core.Categorization, error) {
	prompt := fmt.Sprintf("Usuario: %s\nIA: %s", text, response)

	var cat core.Categorization
	raw, err := c.complete(ctx, ServiceCategorizer, categorizeSystemPrompt, prompt, 0.3)
	if err != nil {
		return core.Categorization{}, err
	}
	if err := decodeJSON(raw, &cat); err != nil {
		c.recordError(ServiceCategorizer)
		return core.Categorization{}, fmt.Errorf("decode categorization: %w", err)
	}
	if c.metrics != nil {
		c.metrics.RecordMemoryOperation("categorization")
	}
	return cat, nil
}

// Summarize condenses a run of stored exchanges into at most maxLength
// characters of Spanish prose.
func (c *Client) Summarize(ctx context.Context, records []memory.Record, maxLength int) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	if maxLength <= 0 {
		maxLength = 200
	}
	var sb strings.Builder
	for _, rec := range records {
		sb.WriteString(rec.Transcript())
		sb.WriteString("\n")
	}
	system := fmt.Sprintf(summarizeSystemPrompt, maxLength)
	raw, err := c.complete(ctx, ServiceSummarizer, system, sb.String(), 0.5)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// complete runs a single system+user message round trip and returns the
// concatenated text blocks of the reply.
func (c *Client) complete(ctx context.Context, service, system, user string, temperature float64) (string, error) {
	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordRequest(service)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.recordError(service)
		return "", fmt.Errorf("%s analysis request: %w", service, err)
	}

	if c.metrics != nil {
		c.metrics.RecordAPIUsage(service, int(resp.Usage.InputTokens+resp.Usage.OutputTokens))
		c.metrics.RecordResponseTime(service, float64(time.Since(start).Milliseconds()))
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		c.recordError(service)
		return "", fmt.Errorf("%s analysis: empty response", service)
	}

	c.logger.Debug("analysis complete", "service", service, "duration", time.Since(start))
	return text.String(), nil
}

func (c *Client) recordError(service string) {
	if c.metrics != nil {
		c.metrics.RecordError(service)
	}
}
