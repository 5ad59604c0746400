// Package conversation keeps the rolling in-session exchange history
// that rides along with every generation request.
package conversation

import (
	"sync"

	"github.com/elenia-ai/elenia-go-sdk/core"
)

// DefaultMaxHistory is the number of exchanges (user/assistant pairs)
// kept when none is configured.
const DefaultMaxHistory = 10

// Buffer is a bounded FIFO of conversation turns. It holds at most
// 2*maxHistory turns; appending beyond that drops the oldest.
type Buffer struct {
	mu         sync.Mutex
	turns      []core.Turn
	maxHistory int
}

// NewBuffer creates a Buffer keeping maxHistory exchanges. Values
// below 1 fall back to DefaultMaxHistory.
func NewBuffer(maxHistory int) *Buffer {
	if maxHistory < 1 {
		maxHistory = DefaultMaxHistory
	}
	return &Buffer{maxHistory: maxHistory}
}

// Append adds a single turn, evicting from the front when full.
func (b *Buffer) Append(turn core.Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(turn)
}

// AppendExchange adds a user turn and the assistant's reply as a pair.
func (b *Buffer) AppendExchange(userText, assistantText string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(core.UserTurn(userText))
	b.appendLocked(core.AssistantTurn(assistantText))
}

func (b *Buffer) appendLocked(turn core.Turn) {
	b.turns = append(b.turns, turn)
	if max := 2 * b.maxHistory; len(b.turns) > max {
		b.turns = append(b.turns[:0], b.turns[len(b.turns)-max:]...)
	}
}

// Snapshot returns a copy of the buffered turns, oldest first.
func (b *Buffer) Snapshot() []core.Turn {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Len reports the number of buffered turns.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.turns)
}
