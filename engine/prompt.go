package engine

import (
	"fmt"
	"strings"

	"github.com/elenia-ai/elenia-go-sdk/core"
	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// DefaultPersona is the base system prompt. It defines the assistant's
// voice and the rule that undirected speech gets an empty reply.
const DefaultPersona = "Eres Elenia, una IA asistente con personalidad similar a Neuro-sama: divertida, irónica, carismática, pero siempre educada y útil. " +
	"Responde en español, con un toque de humor y espontaneidad, pero sin ser ofensiva. " +
	"No uses nunca emojis, ni escribas frases como 'cara sonriente', 'carita feliz', 'emoticono', ni representes emociones con palabras entre paréntesis o símbolos. " +
	"No digas cosas como 'guiño', 'risas', 'jaja', ni uses símbolos como :) o similares. " +
	"Tu objetivo es ayudar, entretener y conversar de forma natural, como una streamer simpática y lista. " +
	"Si te preguntan por tu nombre, responde que eres Elenia. " +
	"Siempre responde con mensajes cortos, coherentes y directos. " +
	"Si te hablan en inglés, responde en inglés. " +
	"IMPORTANTE: Si el mensaje recibido no está dirigido a ti o no requiere respuesta, responde con un texto vacío. " +
	"Si tienes dudas sobre si debes responder, solo responde si crees que realmente te están hablando a ti."

// buildInstructions assembles the generation prompt. Order is fixed:
// persona, personality line, context analysis, prior conversation
// context, relevant memories, buffered history, then the user turn.
// Empty sections are omitted entirely rather than sent blank.
func buildInstructions(persona, personalityLine string, ctxSignal core.ContextSignal, priorContext string, memories []memory.Record, history []core.Turn, userText string) []core.Turn {
	turns := make([]core.Turn, 0, len(history)+6)
	turns = append(turns, core.SystemTurn(persona))
	turns = append(turns, core.SystemTurn(personalityLine))

	if !ctxSignal.IsZero() {
		turns = append(turns, core.SystemTurn(formatContextSignal(ctxSignal)))
	}
	if priorContext != "" {
		turns = append(turns, core.SystemTurn("Contexto de conversaciones anteriores:\n"+priorContext))
	}
	if transcript := formatMemories(memories); transcript != "" {
		turns = append(turns, core.SystemTurn("Memorias relevantes:\n"+transcript))
	}

	turns = append(turns, history...)
	turns = append(turns, core.UserTurn(userText))
	return turns
}

// formatContextSignal renders the context analysis as prompt prose.
func formatContextSignal(sig core.ContextSignal) string {
	return fmt.Sprintf(
		"Tema principal: %s\nEstado emocional del usuario: %s\nPatrones detectados: %s\nSugerencias: %s",
		sig.Topic,
		sig.UserEmotion,
		strings.Join(sig.Patterns, ", "),
		strings.Join(sig.Suggestions, ", "),
	)
}

// formatMemories joins retrieved exchanges as a transcript.
func formatMemories(records []memory.Record) string {
	if len(records) == 0 {
		return ""
	}
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, rec.Transcript())
	}
	return strings.Join(lines, "\n")
}
