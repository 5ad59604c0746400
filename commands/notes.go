package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	createNotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`crea\s+(?:una\s+)?nota\s+(?:que\s+diga\s+)?["']?([^"']+)["']?\s+(?:como|con\s+el\s+título|titulada)\s+["']?([^"']+)["']?`),
		regexp.MustCompile(`guarda\s+(?:una\s+)?nota\s+(?:que\s+diga\s+)?["']?([^"']+)["']?\s+(?:como|con\s+el\s+título|titulada)\s+["']?([^"']+)["']?`),
	}
	readNotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`lee\s+(?:la\s+)?nota\s+["']?([^"']+)["']?`),
		regexp.MustCompile(`muestra\s+(?:la\s+)?nota\s+["']?([^"']+)["']?`),
		regexp.MustCompile(`qué\s+dice\s+(?:la\s+)?nota\s+["']?([^"']+)["']?`),
	}
	deleteNotePatterns = []*regexp.Regexp{
		regexp.MustCompile(`borra\s+(?:la\s+)?nota\s+["']?([^"']+)["']?`),
		regexp.MustCompile(`elimina\s+(?:la\s+)?nota\s+["']?([^"']+)["']?`),
	}
)

// Note is one stored note.
type Note struct {
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NotesManager stores titled notes in a JSON file keyed by title.
type NotesManager struct {
	path   string
	logger *log.Logger

	mu    sync.Mutex
	notes map[string]Note
}

// NotesOption configures a NotesManager.
type NotesOption func(*NotesManager)

// WithNotesLogger sets the manager's logger.
func WithNotesLogger(logger *log.Logger) NotesOption {
	return func(m *NotesManager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewNotesManager creates a manager backed by the JSON file at path.
// An empty path keeps notes in-memory only.
func NewNotesManager(path string, opts ...NotesOption) *NotesManager {
	m := &NotesManager{
		path:   path,
		logger: log.Default().WithPrefix("notes"),
		notes:  make(map[string]Note),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.load()
	return m
}

func (m *NotesManager) load() {
	if m.path == "" {
		return
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("notes file unreadable, starting empty", "path", m.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &m.notes); err != nil {
		m.logger.Warn("notes file corrupt, starting empty", "path", m.path, "error", err)
		m.notes = make(map[string]Note)
	}
}

// save writes the notes file. Callers must hold m.mu.
func (m *NotesManager) save() {
	if m.path == "" {
		return
	}
	data, err := json.MarshalIndent(m.notes, "", "  ")
	if err != nil {
		m.logger.Error("marshal notes failed", "error", err)
		return
	}
	tmp := m.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		m.logger.Error("create notes dir failed", "error", err)
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		m.logger.Error("write notes failed", "error", err)
		return
	}
	if err := os.Rename(tmp, m.path); err != nil {
		m.logger.Error("replace notes failed", "error", err)
	}
}

// Handle parses and executes a note request. The reply is spoken back
// to the user.
func (m *NotesManager) Handle(text string) string {
	lower := strings.ToLower(text)
	switch {
	case matchAny(createNotePatterns, lower) != nil:
		return m.create(lower)
	case matchAny(readNotePatterns, lower) != nil:
		return m.read(matchAny(readNotePatterns, lower)[1])
	case matchAny(deleteNotePatterns, lower) != nil:
		return m.delete(matchAny(deleteNotePatterns, lower)[1])
	default:
		return "No pude entender qué querías hacer con las notas."
	}
}

func matchAny(patterns []*regexp.Regexp, text string) []string {
	for _, p := range patterns {
		if match := p.FindStringSubmatch(text); match != nil {
			return match
		}
	}
	return nil
}

func (m *NotesManager) create(lower string) string {
	match := matchAny(createNotePatterns, lower)
	if match == nil {
		return "No pude entender el contenido o el título de la nota."
	}
	content := strings.TrimSpace(match[1])
	title := strings.TrimSpace(match[2])

	now := time.Now().Format(time.RFC3339)
	m.mu.Lock()
	note := Note{Content: content, CreatedAt: now, UpdatedAt: now}
	if existing, ok := m.notes[title]; ok {
		note.CreatedAt = existing.CreatedAt
	}
	m.notes[title] = note
	m.save()
	m.mu.Unlock()

	return fmt.Sprintf("Nota '%s' creada correctamente.", title)
}

func (m *NotesManager) read(title string) string {
	title = strings.TrimSpace(title)
	m.mu.Lock()
	note, ok := m.notes[title]
	m.mu.Unlock()

	if !ok {
		return fmt.Sprintf("No encontré la nota '%s'.", title)
	}
	return fmt.Sprintf("Nota '%s':\n%s", title, note.Content)
}

func (m *NotesManager) delete(title string) string {
	title = strings.TrimSpace(title)
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notes[title]; !ok {
		return fmt.Sprintf("No encontré la nota '%s'.", title)
	}
	delete(m.notes, title)
	m.save()
	return fmt.Sprintf("Nota '%s' eliminada correctamente.", title)
}

// List returns a spoken summary of stored note titles.
func (m *NotesManager) List() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.notes) == 0 {
		return "No hay notas guardadas."
	}
	var sb strings.Builder
	sb.WriteString("Notas disponibles:\n\n")
	for title := range m.notes {
		fmt.Fprintf(&sb, "- %s\n", title)
	}
	return sb.String()
}
