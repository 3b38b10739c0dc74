// Package live streams a loom application to a browser over a WebSocket:
// one runtime, store, and display tree per connection, the initial tree as
// HTML, every later commit as a patch frame, and client events flowing back
// through the runtime's dispatch path.
//
// The rendering core never imports this package; it is a display-surface
// collaborator built entirely on the public Backend and patch contracts.
package live

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/loom-ui/loom/pkg/loom"
)

type config struct {
	logger      *slog.Logger
	metrics     *loom.Metrics
	checkOrigin func(*http.Request) bool
}

// Option adjusts the live handler.
type Option func(*config)

// WithLogger sets the logger sessions report through.
// Default: a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics records every session's runtime activity on m.
// Default: no metrics.
func WithMetrics(m *loom.Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithCheckOrigin sets the WebSocket origin policy.
// Default: same-origin (the gorilla default).
func WithCheckOrigin(fn func(*http.Request) bool) Option {
	return func(c *config) { c.checkOrigin = fn }
}

// Handler upgrades each request to a WebSocket and serves one session over
// it: a fresh component from factory mounted on a fresh runtime, torn down
// when the connection drops.
func Handler(factory func() loom.Component, opts ...Option) http.Handler {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     cfg.checkOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.logger.Warn("websocket upgrade failed",
				"remote", r.RemoteAddr, "err", err)
			return
		}
		defer conn.Close()

		cfg.logger.Debug("session connected", "remote", r.RemoteAddr)
		s, err := newSession(conn, factory, cfg)
		if err != nil {
			cfg.logger.Error("session start failed",
				"remote", r.RemoteAddr, "err", err)
			return
		}
		defer s.close()

		s.run()
		cfg.logger.Debug("session closed", "remote", r.RemoteAddr)
	})
}
