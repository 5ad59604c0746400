package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
)

// maxSearchResults caps how many hits make it into the spoken reply.
const maxSearchResults = 3

var queryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`busca\s+(?:sobre|acerca de|información sobre)?\s*["']?([^"']+)["']?`),
	regexp.MustCompile(`encuentra\s+(?:información sobre)?\s*["']?([^"']+)["']?`),
	regexp.MustCompile(`qué es\s+["']?([^"']+)["']?`),
	regexp.MustCompile(`quién es\s+["']?([^"']+)["']?`),
}

// SearchResult is one hit returned by a search backend.
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// SearchFunc performs the actual lookup. It is supplied by the caller;
// this package only extracts the query and formats results.
type SearchFunc func(ctx context.Context, query string) ([]SearchResult, error)

// SearchManager turns spoken search requests into backend lookups.
type SearchManager struct {
	search SearchFunc
	logger *log.Logger
}

// SearchOption configures a SearchManager.
type SearchOption func(*SearchManager)

// WithSearchLogger sets the manager's logger.
func WithSearchLogger(logger *log.Logger) SearchOption {
	return func(m *SearchManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSearchManager creates a manager around a search backend.
func NewSearchManager(search SearchFunc, opts ...SearchOption) *SearchManager {
	m := &SearchManager{
		search: search,
		logger: log.Default().WithPrefix("search"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ExtractQuery pulls the search terms out of a spoken request. It
// reports false when no query phrasing is recognized.
func ExtractQuery(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, p := range queryPatterns {
		if match := p.FindStringSubmatch(lower); match != nil {
			query := strings.TrimSpace(match[1])
			if query != "" {
				return query, true
			}
		}
	}
	return "", false
}

// Handle extracts the query, runs the backend, and formats the hits
// into a spoken reply.
func (m *SearchManager) Handle(ctx context.Context, text string) string {
	query, ok := ExtractQuery(text)
	if !ok {
		return "No pude entender qué querías buscar."
	}
	if m.search == nil {
		return "No encontré resultados para tu búsqueda."
	}

	results, err := m.search(ctx, query)
	if err != nil {
		m.logger.Warn("search backend failed", "query", query, "error", err)
		return "Hubo un error al realizar la búsqueda."
	}
	if len(results) == 0 {
		return "No encontré resultados para tu búsqueda."
	}
	return FormatResults(results)
}

// FormatResults renders search hits as spoken prose.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No encontré resultados."
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	var sb strings.Builder
	sb.WriteString("Aquí están los resultados más relevantes:\n\n")
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n\n", i+1, r.Title, r.Snippet)
	}
	return sb.String()
}
