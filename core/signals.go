package core

import "strings"

// EmotionSignal is the payload returned by the emotion analysis capability.
type EmotionSignal struct {
	Emotion   string   `json:"emotion"`
	Intensity float64  `json:"intensity"`
	Keywords  []string `json:"keywords"`
	Context   string   `json:"context"`
}

// DefaultEmotionSignal is the neutral payload substituted when the emotion
// analysis capability fails or is not configured.
func DefaultEmotionSignal() EmotionSignal {
	return EmotionSignal{
		Emotion:   "neutral",
		Intensity: 0.5,
		Context:   "neutral",
	}
}

// ContextSignal is the payload returned by the context analysis capability.
type ContextSignal struct {
	Topic       string   `json:"topic"`
	UserEmotion string   `json:"user_emotion"`
	Patterns    []string `json:"patterns"`
	Suggestions []string `json:"suggestions"`
}

// DefaultContextSignal is the empty payload substituted when the context
// analysis capability fails or is not configured.
func DefaultContextSignal() ContextSignal {
	return ContextSignal{
		Topic:       "general",
		UserEmotion: "neutral",
	}
}

// IsZero reports whether the signal carries nothing worth injecting into
// the prompt.
func (c ContextSignal) IsZero() bool {
	return strings.TrimSpace(c.Topic) == "" &&
		strings.TrimSpace(c.UserEmotion) == "" &&
		len(c.Patterns) == 0 &&
		len(c.Suggestions) == 0
}

// Categorization is the payload returned by the memory categorization
// capability for a completed exchange.
type Categorization struct {
	Category   string   `json:"category"`
	Importance float64  `json:"importance"`
	Tags       []string `json:"tags"`
	Reason     string   `json:"reason"`
}

// DefaultCategorization is substituted when the categorization capability
// fails; exchanges are still remembered, just with middling weight.
func DefaultCategorization() Categorization {
	return Categorization{
		Category:   "temporal",
		Importance: 0.5,
	}
}
