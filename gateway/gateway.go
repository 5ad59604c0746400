// Package gateway exposes the reply pipeline over a websocket. A
// speech-to-text frontend streams transcribed utterances in; the
// gateway decides which are addressed to the assistant, runs the
// pipeline, and streams replies back for synthesis.
package gateway

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Responder runs the reply pipeline for one utterance. *engine.Engine
// satisfies it.
type Responder interface {
	Run(ctx context.Context, text, priorContext string) (string, error)
	RecentContext(ctx context.Context) string
}

// Scrubber cleans text before it enters the pipeline and before the
// reply leaves. *filter.Filter satisfies it.
type Scrubber interface {
	Apply(text string) string
}

// CommandDispatcher runs side-effect commands triggered by a reply.
// *commands.Dispatcher satisfies it.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, reply string)
}

type utterance struct {
	Text string `json:"text"`
}

type reply struct {
	Reply string `json:"reply"`
}

// Gateway bridges transcribed utterances to the reply pipeline.
type Gateway struct {
	responder  Responder
	scrubber   Scrubber
	dispatcher CommandDispatcher
	upgrader   websocket.Upgrader
	logger     *log.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithScrubber attaches a content filter.
func WithScrubber(s Scrubber) Option {
	return func(g *Gateway) {
		g.scrubber = s
	}
}

// WithDispatcher attaches a command dispatcher.
func WithDispatcher(d CommandDispatcher) Option {
	return func(g *Gateway) {
		g.dispatcher = d
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates a Gateway around a responder.
func New(responder Responder, opts ...Option) *Gateway {
	g := &Gateway{
		responder: responder,
		logger:    log.Default().WithPrefix("gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Handle processes one transcribed utterance end to end and returns
// the reply. An empty reply means the utterance was not addressed to
// the assistant or the model declined to answer.
func (g *Gateway) Handle(ctx context.Context, text string) (string, error) {
	if text == "" || !IsDirected(text) {
		return "", nil
	}

	cleaned := StripWakePrefix(text)
	if g.scrubber != nil {
		cleaned = g.scrubber.Apply(cleaned)
	}
	if cleaned == "" {
		return "", nil
	}

	priorContext := g.responder.RecentContext(ctx)

	out, err := g.responder.Run(ctx, cleaned, priorContext)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "", nil
	}

	if g.scrubber != nil {
		out = g.scrubber.Apply(out)
	}
	if g.dispatcher != nil {
		g.dispatcher.Dispatch(ctx, out)
	}
	return out, nil
}

// ServeHTTP upgrades the connection and processes utterances until the
// client disconnects. Silence (no reply) is not echoed back.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	g.logger.Info("client connected", "remote", conn.RemoteAddr())

	for {
		var in utterance
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Warn("read failed", "error", err)
			}
			return
		}

		out, err := g.Handle(r.Context(), in.Text)
		if err != nil {
			g.logger.Error("pipeline failed", "error", err)
			continue
		}
		if out == "" {
			continue
		}

		if err := conn.WriteJSON(reply{Reply: out}); err != nil {
			g.logger.Warn("write failed", "error", err)
			return
		}
	}
}
