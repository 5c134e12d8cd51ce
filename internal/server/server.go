// Package server exposes the scout's progress over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator"
	"github.com/Not-Dhanraj/Star-Scout/internal/orchestrator/history"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Source is the read side of the decision loop.
type Source interface {
	Status() orchestrator.Status
	Recent(n int) []history.Event
	Since(t time.Time) []history.Event
	Counts() map[history.Kind]int
	Events() <-chan history.Event
}

// Message types.
type Message struct {
	Type string `json:"type"`
}

type StatusMessage struct {
	Type   string              `json:"type"`
	Status orchestrator.Status `json:"status"`
}

type EventMessage struct {
	Type  string        `json:"type"`
	Event history.Event `json:"event"`
}

type RateLimitedMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// rateLimiter tracks message timestamps using a sliding window.
type rateLimiter struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// allow checks if a message is allowed and records the timestamp if so.
func (r *rateLimiter) allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-RateLimitWindow)

	valid := r.timestamps[:0]
	for _, t := range r.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	r.timestamps = valid

	if len(r.timestamps) >= RateLimitMessages {
		return false
	}
	r.timestamps = append(r.timestamps, now)
	return true
}

// Server handles monitor HTTP and WebSocket connections.
type Server struct {
	src   Source
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
}

func New(src Source) *Server {
	return &Server{
		src:   src,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// WebSocket endpoint
	mux.HandleFunc("/ws", s.handleWebSocket)

	// REST API
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/counts", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.src.Counts())
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

// ListenAndServe serves the monitor and broadcasts loop events until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.Broadcast(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("monitor listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Broadcast forwards loop events to every connected client until ctx ends.
func (s *Server) Broadcast(ctx context.Context) {
	events := s.src.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.sendAll(ctx, EventMessage{Type: "event", Event: evt})
		}
	}
}

func (s *Server) sendAll(ctx context.Context, msg any) {
	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	for _, c := range conns {
		wctx, cancel := context.WithTimeout(ctx, WriteTimeout)
		if err := wsjson.Write(wctx, c, msg); err != nil {
			slog.Debug("websocket write failed", "error", err)
		}
		cancel()
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	ctx := r.Context()
	log := trace.Logger(ctx)
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// Snapshot first, so a client never sees events without a status.
	if err := wsjson.Write(ctx, conn, StatusMessage{Type: "status", Status: s.src.Status()}); err != nil {
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	rl := &rateLimiter{}
	for {
		var msg json.RawMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			log.Debug("websocket read error", "error", err)
			return
		}

		if !rl.allow() {
			log.Warn("rate limit exceeded", "remote", r.RemoteAddr)
			_ = wsjson.Write(ctx, conn, RateLimitedMessage{Type: "error", Message: "rate limit exceeded"})
			continue
		}

		var base Message
		if err := json.Unmarshal(msg, &base); err != nil {
			continue
		}
		if base.Type == "status" {
			_ = wsjson.Write(ctx, conn, StatusMessage{Type: "status", Status: s.src.Status()})
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.src.Status())
}

// handleEvents serves ?since=<RFC3339> or the newest ?n= events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "since must be an RFC3339 time", http.StatusBadRequest)
			return
		}
		events := s.src.Since(t)
		if len(events) > MaxEventLimit {
			events = events[len(events)-MaxEventLimit:]
		}
		writeJSON(w, events)
		return
	}

	n := DefaultEventLimit
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = min(parsed, MaxEventLimit)
	}
	writeJSON(w, s.src.Recent(n))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "error", err)
	}
}
