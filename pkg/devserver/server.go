// Package devserver serves a live view of a running reactron engine.
//
// The server exposes the rendered document at "/", the committed fiber tree
// at "/fiber-tree", the frame trace at "/frames" and a websocket session at
// "/ws". Browsers connected to "/ws" forward DOM events by node id and
// receive the container HTML after every commit.
//
// All engine access goes through Scheduler.Dispatch, so the server is safe
// to run next to Scheduler.Run.
package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-drift/reactron/pkg/host/dom"
	"github.com/go-drift/reactron/pkg/scheduler"
)

// DefaultAddr is the listen address used when Config.Addr is empty.
const DefaultAddr = "127.0.0.1:7070"

// Config configures a Server.
type Config struct {
	// Addr is the TCP address to listen on.
	Addr string
	// Title is the page title.
	Title string
	// OriginPatterns lists extra origins allowed to open the websocket.
	OriginPatterns []string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server is the development HTTP server.
type Server struct {
	sched  *scheduler.Scheduler
	doc    *dom.Document
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	clients  map[*client]struct{}
	unhook   func()
}

// New creates a server for an engine driven by sched and rendering into doc.
// doc should be created WithNodeIDs so the page can address nodes.
func New(sched *scheduler.Scheduler, doc *dom.Document, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Title == "" {
		cfg.Title = "reactron"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		sched:   sched,
		doc:     doc,
		cfg:     cfg,
		logger:  cfg.Logger.With(slog.String("component", "devserver")),
		clients: make(map[*client]struct{}),
	}
	s.unhook = sched.OnCommit(s.broadcast)
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/fiber-tree", s.handleFiberTree)
	mux.HandleFunc("/frames", s.handleFrames)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Start binds the listener and serves in the background. It returns the
// bound address, which differs from Config.Addr when the port is 0.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().String(), nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("devserver listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			s.logger.Error("devserver stopped", slog.Any("error", err))
		}
	}()

	s.logger.Info("devserver listening", slog.String("addr", listener.Addr().String()))
	return listener.Addr().String(), nil
}

// Shutdown stops the server, closes websocket sessions and detaches from
// the scheduler.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	unhook := s.unhook
	s.unhook = nil
	s.mu.Unlock()

	if unhook != nil {
		unhook()
	}
	for _, c := range clients {
		c.close()
	}
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// onLoop runs fn on the scheduler goroutine and waits for it to finish, or
// for ctx to end.
func (s *Server) onLoop(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	s.sched.Dispatch(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
