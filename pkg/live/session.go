package live

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/loom-ui/loom/pkg/loom"
	"github.com/loom-ui/loom/pkg/surface"
	"github.com/loom-ui/loom/pkg/vdom"
)

// Session drives one connected client: a private runtime and store, a
// server-side display tree, and the wire between them. All session state is
// touched only from the connection's read loop, so the runtime's
// single-goroutine contract holds per connection.
type Session struct {
	rt     *loom.Runtime
	back   *frameBackend
	conn   *websocket.Conn
	logger *slog.Logger

	// handlers maps "path/event" to the bound handler, rebuilt after every
	// commit because handlers are fresh closures each render.
	handlers map[string]func(vdom.Event)

	writeMu sync.Mutex
	rootID  uint64
}

// frameBackend commits to a surface tree and queues the equivalent wire
// frames for the session to send after the drain settles.
type frameBackend struct {
	tree   *surface.Tree
	queued []Frame
}

func (b *frameBackend) Mount(root *vdom.VNode) error {
	if err := b.tree.Mount(root); err != nil {
		return err
	}
	b.queued = append(b.queued, Frame{T: "tree", HTML: b.tree.HTML()})
	return nil
}

func (b *frameBackend) Apply(patches []vdom.Patch) error {
	if err := b.tree.Apply(patches); err != nil {
		return err
	}
	b.queued = append(b.queued, Frame{T: "patch", Ops: wirePatches(patches)})
	return nil
}

func (b *frameBackend) take() []Frame {
	q := b.queued
	b.queued = nil
	return q
}

func newSession(conn *websocket.Conn, factory func() loom.Component, cfg config) (*Session, error) {
	back := &frameBackend{tree: surface.NewTree()}
	rt, err := loom.New(loom.Config{
		Backend: back,
		Logger:  cfg.logger,
		Metrics: cfg.metrics,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{
		rt:     rt,
		back:   back,
		conn:   conn,
		logger: cfg.logger,
	}

	id, err := rt.Mount(factory())
	if err != nil {
		return nil, fmt.Errorf("mount session root: %w", err)
	}
	s.rootID = id
	s.collectHandlers()
	if err := s.sendPending(); err != nil {
		return nil, err
	}
	return s, nil
}

// run reads event frames until the connection drops. Every event is
// dispatched with update coalescing, then the resulting frames stream back
// on the same goroutine.
func (s *Session) run() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("session read failed", "err", err)
			}
			return
		}
		ev, err := decodeEvent(data)
		if err != nil {
			s.logger.Warn("dropping malformed event frame", "err", err)
			continue
		}
		s.handleEvent(ev)
		if err := s.sendPending(); err != nil {
			s.logger.Debug("session write failed", "err", err)
			return
		}
	}
}

// handleEvent resolves the handler for the event's path and invokes it. The
// client reports the deepest element under the pointer, so resolution walks
// ancestor paths too, like bubbling would. Handler panics are recovered
// here: one broken handler must not take down the connection.
func (s *Session) handleEvent(ev EventFrame) {
	path := vdom.Path(ev.Path)
	handler, at := s.handlerBubbling(path, ev.Name)
	if handler == nil {
		s.logger.Debug("no handler for event",
			"event", ev.Name, "path", path.String())
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("event handler panicked",
					"event", ev.Name, "path", at, "panic", r,
					"stack", string(debug.Stack()))
			}
		}()
		err := s.rt.Dispatch(func() {
			handler(vdom.Event{Type: ev.Name, Value: ev.Value})
		})
		if err != nil {
			s.logger.Error("event dispatch failed",
				"event", ev.Name, "path", at, "err", err)
		}
	}()
	s.collectHandlers()
}

func (s *Session) handlerBubbling(path vdom.Path, event string) (func(vdom.Event), string) {
	for p := path; ; p = p[:len(p)-1] {
		key := p.String() + "/" + event
		if fn, ok := s.handlers[key]; ok {
			return fn, p.String()
		}
		if len(p) == 0 {
			return nil, ""
		}
	}
}

// collectHandlers rebuilds the handler registry from the latest committed
// trees. Instance trees keep component placeholders; those have no handlers
// of their own and the owning child instance is visited separately.
func (s *Session) collectHandlers() {
	m := make(map[string]func(vdom.Event), len(s.handlers))
	s.rt.EachInstance(func(_ uint64, base vdom.Path, tree *vdom.VNode) {
		var walk func(n *vdom.VNode, p vdom.Path)
		walk = func(n *vdom.VNode, p vdom.Path) {
			if n == nil || n.Kind != vdom.KindElement {
				return
			}
			for _, name := range n.Props.EventNames() {
				if fn, ok := n.Props.HandlerFor(name); ok {
					m[p.String()+"/"+name] = fn
				}
			}
			for i, ch := range n.Children {
				walk(ch, p.Child(i))
			}
		}
		walk(tree, base)
	})
	s.handlers = m
}

// sendPending writes every frame the backend queued since the last send.
func (s *Session) sendPending() error {
	for _, f := range s.back.take() {
		s.writeMu.Lock()
		err := s.conn.WriteJSON(f)
		s.writeMu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// close unmounts the session root so effect cleanups run before the
// connection state is dropped.
func (s *Session) close() {
	if s.rootID == 0 {
		return
	}
	if err := s.rt.Unmount(s.rootID); err != nil {
		s.logger.Debug("session unmount failed", "err", err)
	}
	s.rootID = 0
}
