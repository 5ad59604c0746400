// Package commands implements side-effect commands the assistant can
// trigger through its own replies: timers, notes, and web search.
// Trigger words in a generated reply cause the matching handler to run
// after the reply is delivered.
package commands

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// Dispatcher scans replies for command trigger words and runs the
// matching managers. Any subset of managers may be nil.
type Dispatcher struct {
	timers *TimerManager
	notes  *NotesManager
	search *SearchManager
	logger *log.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the dispatcher's logger.
func WithDispatcherLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher wires the command managers together.
func NewDispatcher(timers *TimerManager, notes *NotesManager, search *SearchManager, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		timers: timers,
		notes:  notes,
		search: search,
		logger: log.Default().WithPrefix("commands"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs every command whose trigger word appears in the reply.
// A reply can trigger several commands.
func (d *Dispatcher) Dispatch(ctx context.Context, reply string) {
	lower := strings.ToLower(reply)

	if d.timers != nil && strings.Contains(lower, "temporizador") {
		d.logger.Info("dispatching timer command")
		d.timers.Handle(reply)
	}
	if d.search != nil && strings.Contains(lower, "buscar") {
		d.logger.Info("dispatching search command")
		d.search.Handle(ctx, reply)
	}
	if d.notes != nil && strings.Contains(lower, "nota") {
		d.logger.Info("dispatching note command")
		d.notes.Handle(reply)
	}
}
