package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/elenia-ai/elenia-go-sdk/core"
)

// DefaultGenerationModel is the model used for user-facing replies when
// none is configured.
const DefaultGenerationModel = "claude-sonnet-4-20250514"

// DefaultGenerationMaxTokens keeps replies short enough to speak aloud.
const DefaultGenerationMaxTokens = 150

// ClaudeGenerator implements Generator over the Anthropic API. System
// turns become system blocks; user and assistant turns become the
// message history.
type ClaudeGenerator struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// GeneratorOption configures a ClaudeGenerator.
type GeneratorOption func(*ClaudeGenerator)

// WithGenerationModel overrides the reply model.
func WithGenerationModel(model string) GeneratorOption {
	return func(g *ClaudeGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGenerationMaxTokens overrides the reply token budget.
func WithGenerationMaxTokens(n int64) GeneratorOption {
	return func(g *ClaudeGenerator) {
		if n > 0 {
			g.maxTokens = n
		}
	}
}

// WithGenerationTemperature overrides the sampling temperature.
func WithGenerationTemperature(t float64) GeneratorOption {
	return func(g *ClaudeGenerator) {
		g.temperature = t
	}
}

// NewClaudeGenerator creates a generator around an Anthropic client.
func NewClaudeGenerator(client *anthropic.Client, opts ...GeneratorOption) *ClaudeGenerator {
	g := &ClaudeGenerator{
		client:      client,
		model:       DefaultGenerationModel,
		maxTokens:   DefaultGenerationMaxTokens,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate runs one completion over the assembled turns.
func (g *ClaudeGenerator) Generate(ctx context.Context, turns []core.Turn) (string, error) {
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam

	for _, turn := range turns {
		switch turn.Role {
		case core.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: turn.Content})
		case core.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		case core.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages:    messages,
		System:      system,
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(text.String()), nil
}
