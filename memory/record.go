package memory

import (
	"fmt"
	"time"
)

// Category labels a record by the kind of thing it remembers. The set is
// deliberately open: the categorization capability may produce labels
// beyond the known three and they are stored as-is.
type Category string

const (
	CategoryPersonal   Category = "personal"
	CategoryTemporal   Category = "temporal"
	CategoryImportante Category = "importante"
)

// Record is one remembered exchange: what the user said, what the agent
// answered, and the embedding of the user text computed once at write time.
//
// The ID is a monotonically increasing sequence number assigned by the
// store at creation; it, not the timestamp, is the record's identity.
// Everything except Importance is immutable after creation.
type Record struct {
	ID         uint64    `json:"id"`
	Text       string    `json:"text"`
	Response   string    `json:"response"`
	Embedding  []float32 `json:"embedding"`
	Timestamp  time.Time `json:"timestamp"`
	Category   Category  `json:"category"`
	Importance float64   `json:"importance"`
	Tags       []string  `json:"tags"`
}

// Transcript renders the exchange in the form injected into prompts.
func (r Record) Transcript() string {
	return fmt.Sprintf("Usuario: %s\nIA: %s", r.Text, r.Response)
}

// clampImportance keeps importance inside its documented [0,1] range.
func clampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
