package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/go-drift/reactron/pkg/core"
	"github.com/go-drift/reactron/pkg/errors"
	"github.com/go-drift/reactron/pkg/scheduler"
)

// EventMessage is an event forwarded by the page over /ws.
type EventMessage struct {
	RID     int64  `json:"rid"`
	Type    string `json:"type"`
	Value   string `json:"value,omitempty"`
	Key     string `json:"key,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// RenderMessage carries the container HTML to the page.
type RenderMessage struct {
	Seq  int64  `json:"seq"`
	HTML string `json:"html"`
}

type client struct {
	conn *websocket.Conn
	// Holds at most the newest render; older ones are superseded.
	send chan RenderMessage
	once sync.Once
	done chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan RenderMessage, 1),
		done: make(chan struct{}),
	}
}

func (c *client) push(msg RenderMessage) {
	for {
		select {
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close(websocket.StatusGoingAway, "server shutting down")
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  s.cfg.OriginPatterns,
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := newClient(conn)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("websocket client connected", slog.String("remote", r.RemoteAddr))

	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.close()
		s.logger.Debug("websocket client disconnected", slog.String("remote", r.RemoteAddr))
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c.push(RenderMessage{HTML: s.doc.HTML()})
	go s.writePump(ctx, c)
	s.readPump(ctx, c)
}

func (s *Server) readPump(ctx context.Context, c *client) {
	for {
		var msg EventMessage
		if err := wsjson.Read(ctx, c.conn, &msg); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				s.logger.Debug("websocket read ended", slog.Any("error", err))
			}
			return
		}
		s.dispatchEvent(msg)
	}
}

func (s *Server) writePump(ctx context.Context, c *client) {
	defer errors.Recover("devserver.writePump")
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := wsjson.Write(ctx, c.conn, msg); err != nil {
				s.logger.Debug("websocket write failed", slog.Any("error", err))
				return
			}
		}
	}
}

// dispatchEvent hands an event to the loop goroutine.
func (s *Server) dispatchEvent(msg EventMessage) {
	ev := core.Event{Type: msg.Type, Value: msg.Value, Key: msg.Key, Checked: msg.Checked}
	s.sched.Dispatch(func() {
		defer errors.RecoverWithCallback("devserver.dispatchEvent", func(r any) {
			s.logger.Error("event listener panicked", slog.Int64("rid", msg.RID), slog.String("type", msg.Type), slog.Any("recovered", r))
		})
		handled, err := s.doc.Dispatch(msg.RID, ev)
		if err != nil {
			s.logger.Warn("dropped event", slog.Int64("rid", msg.RID), slog.String("type", msg.Type), slog.Any("error", err))
			return
		}
		if !handled {
			s.logger.Debug("event had no listener", slog.Int64("rid", msg.RID), slog.String("type", msg.Type))
		}
	})
}

// broadcast runs on the loop goroutine after every commit.
func (s *Server) broadcast(sample scheduler.FrameSample) {
	msg := RenderMessage{Seq: sample.Seq, HTML: s.doc.HTML()}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.push(msg)
	}
}

// ClientCount returns the number of connected websocket sessions.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
