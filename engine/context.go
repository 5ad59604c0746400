package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/elenia-ai/elenia-go-sdk/memory"
)

// DefaultSummarizeAfter is the recent-exchange count above which the
// prior context is summarized instead of inlined verbatim.
const DefaultSummarizeAfter = 5

// verbatimTail is how many of the newest exchanges stay verbatim after
// a summary.
const verbatimTail = 3

// RecentContext renders the most recent stored exchanges into a prior
// context string for the next turn. Short histories are inlined as a
// transcript; longer ones are summarized with the last few exchanges
// kept verbatim. A failed summarization falls back to the plain tail
// transcript.
func (e *Engine) RecentContext(ctx context.Context) string {
	recent := e.store.Recent(e.summarizeAfter*2, "")
	if len(recent) == 0 {
		return ""
	}

	if len(recent) <= e.summarizeAfter || e.summarizer == nil {
		return transcript(recent)
	}

	summary, err := e.summarizer.Summarize(ctx, recent, 200)
	if err != nil || summary == "" {
		if err != nil {
			e.logger.Warn("summarization failed, using plain transcript", "error", err)
		}
		return transcript(recent[len(recent)-verbatimTail:])
	}

	tail := transcript(recent[len(recent)-verbatimTail:])
	return fmt.Sprintf("Resumen de conversaciones anteriores:\n%s\n\nConversaciones recientes:\n%s", summary, tail)
}

func transcript(records []memory.Record) string {
	lines := make([]string, 0, len(records))
	for _, rec := range records {
		lines = append(lines, rec.Transcript())
	}
	return strings.Join(lines, "\n")
}
