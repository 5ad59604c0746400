// Package personality tracks the agent's emotional distribution and
// personality traits, and turns them into tone guidance for prompts.
package personality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// emotionOrder fixes both the recognized label set and the tie-break
// order for Dominant.
var emotionOrder = []string{"feliz", "triste", "enojado", "sorprendido", "neutral"}

// traitOrder fixes the phrase order in StyleDescriptor.
var traitOrder = []string{"humor", "formalidad", "energia", "empatia"}

var toneByEmotion = map[string]string{
	"feliz":       "más entusiasta y positiva",
	"triste":      "más empática y comprensiva",
	"enojado":     "más directa y firme",
	"sorprendido": "más curiosa y expresiva",
	"neutral":     "equilibrada y profesional",
}

var phraseByTrait = map[string]string{
	"humor":      "con un toque de humor",
	"formalidad": "de manera más formal",
	"energia":    "con más energía",
	"empatia":    "mostrando más empatía",
}

// styleThreshold is the trait weight above which its phrase triggers.
const styleThreshold = 0.6

// neutralStyle is the fallback when no trait triggers.
const neutralStyle = "de manera natural"

// State is a normalized distribution over emotion labels plus a set of
// independent trait weights. Emotion weights always sum to 1 after an
// update; traits are each clamped to [0,1] but not normalized.
//
// With a non-empty path the state is snapshotted to disk after every
// mutation and reloaded on construction.
type State struct {
	path   string
	logger *log.Logger

	mu       sync.Mutex
	emotions map[string]float64
	traits   map[string]float64
}

// snapshot is the persisted shape; field names are part of the on-disk
// format.
type snapshot struct {
	Emotions   map[string]float64 `json:"emotions"`
	Traits     map[string]float64 `json:"traits"`
	LastUpdate string             `json:"last_update"`
}

// Option configures a State.
type Option func(*State)

// WithLogger sets the state's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a State, loading the snapshot at path when one exists.
// An empty path keeps the state purely in-memory.
func New(path string, opts ...Option) *State {
	s := &State{
		path:   path,
		logger: log.Default().WithPrefix("personality"),
		emotions: map[string]float64{
			"feliz":       0.5,
			"triste":      0.0,
			"enojado":     0.0,
			"sorprendido": 0.0,
			"neutral":     0.5,
		},
		traits: map[string]float64{
			"humor":      0.7,
			"formalidad": 0.3,
			"energia":    0.6,
			"empatia":    0.8,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *State) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("snapshot unreadable, keeping defaults", "path", s.path, "error", err)
		}
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("snapshot corrupt, keeping defaults", "path", s.path, "error", err)
		return
	}
	// Only recognized labels are taken over; stray keys in an old or
	// hand-edited snapshot are dropped.
	for _, label := range emotionOrder {
		if v, ok := snap.Emotions[label]; ok {
			s.emotions[label] = v
		}
	}
	for _, trait := range traitOrder {
		if v, ok := snap.Traits[trait]; ok {
			s.traits[trait] = v
		}
	}
}

// save writes the snapshot. Callers must hold s.mu.
func (s *State) save() {
	if s.path == "" {
		return
	}
	snap := snapshot{
		Emotions:   s.emotions,
		Traits:     s.traits,
		LastUpdate: time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("marshal snapshot failed", "error", err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Error("create snapshot dir failed", "error", err)
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("write snapshot failed", "error", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("replace snapshot failed", "error", err)
	}
}

// UpdateEmotion assigns intensity (clamped to [0,1]) to a recognized
// label and renormalizes the distribution to sum to 1. Unrecognized
// labels are ignored: incoming signals are best-effort.
func (s *State) UpdateEmotion(label string, intensity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.emotions[label]; !ok {
		s.logger.Debug("ignoring unknown emotion label", "label", label)
		return
	}
	s.emotions[label] = clamp(intensity)
	s.normalize()
	s.save()
}

// normalize rescales emotion weights to sum to 1. A zero sum leaves the
// distribution unchanged. Callers must hold s.mu.
func (s *State) normalize() {
	var total float64
	for _, v := range s.emotions {
		total += v
	}
	if total <= 0 {
		return
	}
	for label := range s.emotions {
		s.emotions[label] /= total
	}
}

// AdjustTrait sets a recognized trait to value, clamped to [0,1].
func (s *State) AdjustTrait(trait string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.traits[trait]; !ok {
		s.logger.Debug("ignoring unknown trait", "trait", trait)
		return
	}
	s.traits[trait] = clamp(value)
	s.save()
}

// Dominant returns the highest-weighted emotion label. Ties resolve in
// declaration order so the answer is deterministic.
func (s *State) Dominant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dominantLocked()
}

func (s *State) dominantLocked() string {
	best := emotionOrder[0]
	for _, label := range emotionOrder[1:] {
		if s.emotions[label] > s.emotions[best] {
			best = label
		}
	}
	return best
}

// ToneDescriptor maps the dominant emotion to a short tone instruction.
func (s *State) ToneDescriptor() string {
	return toneByEmotion[s.Dominant()]
}

// StyleDescriptor conjoins the phrases of all traits above the trigger
// threshold, or a neutral fallback when none trigger.
func (s *State) StyleDescriptor() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parts []string
	for _, trait := range traitOrder {
		if s.traits[trait] > styleThreshold {
			parts = append(parts, phraseByTrait[trait])
		}
	}
	if len(parts) == 0 {
		return neutralStyle
	}
	return strings.Join(parts, " y ")
}

// PromptLine renders the full personality/tone instruction injected into
// the generation prompt.
func (s *State) PromptLine() string {
	return fmt.Sprintf("Actualmente te sientes %s, responde %s.", s.ToneDescriptor(), s.StyleDescriptor())
}

// Emotions returns a copy of the current emotion distribution.
func (s *State) Emotions() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.emotions))
	for k, v := range s.emotions {
		out[k] = v
	}
	return out
}

// Traits returns a copy of the current trait weights.
func (s *State) Traits() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.traits))
	for k, v := range s.traits {
		out[k] = v
	}
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
