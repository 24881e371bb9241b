// Package server exposes the snapshot document over HTTP.
//
// The API always answers HTTP 200 with a well-formed JSON document; the
// ok and error fields communicate degradation. A failed refresh is served
// from the last known-good snapshot when one exists, and from an
// all-placeholder document on cold start.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jpalmerr/raceboard/internal/store"
)

const (
	// sseWriteTimeout bounds a single SSE write so slow or disconnected
	// clients cannot block shutdown. Must be <= shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// Snapshotter produces fresh snapshots and degraded fallbacks.
type Snapshotter interface {
	Snapshot(ctx context.Context) (store.Snapshot, error)
	Fallback(cause error) store.Snapshot
}

// Server handles HTTP requests for the snapshot API.
//
// Endpoints:
//   - GET /api/snapshot: refresh and return the snapshot document
//   - GET /api/sse: Server-Sent Events stream of new snapshots
//   - GET /healthz: liveness probe
type Server struct {
	svc        Snapshotter
	slot       *store.Slot
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a [Server]. It does not start listening until [Server.Start].
func New(svc Snapshotter, slot *store.Slot, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:    svc,
		slot:   slot,
		port:   port,
		logger: logger,
	}
}

// Routes builds the router. Exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/snapshot", s.handleSnapshot)
	r.Get("/api/sse", s.handleSSE)
	r.Get("/healthz", s.handleHealthz)
	return r
}

// Start serves HTTP requests until the context is cancelled, then shuts
// down gracefully with a bounded timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{
		Handler: s.Routes(),
		// request contexts derive from the server context, so SSE
		// handlers observe shutdown as well as client disconnects
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleSnapshot runs the pipeline and returns the resulting document.
//
// A refresh failure never surfaces as an HTTP error: the handler serves
// the cached snapshot marked degraded, or the placeholder document when
// no snapshot has ever been produced.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", uuid.NewString())

	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		if last, ok := s.slot.Latest(); ok {
			logger.Warn("refresh failed, serving last known-good snapshot", "error", err)
			s.writeJSON(w, last.Degraded(err.Error()))
			return
		}
		logger.Warn("refresh failed with empty cache, serving placeholders", "error", err)
		s.writeJSON(w, s.svc.Fallback(err))
		return
	}

	s.slot.Replace(snap)
	logger.Info("snapshot refreshed", "generated_at", snap.GeneratedAtISO)
	s.writeJSON(w, snap)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handleSSE streams newly produced snapshots via Server-Sent Events.
//
// Write deadlines prevent goroutine leaks when clients are slow or gone:
// a blocked write would otherwise keep the handler from noticing context
// cancellation.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.slot.Subscribe()
	defer s.slot.Unsubscribe(ch)

	// seed new clients with the current snapshot, if any
	if snap, ok := s.slot.Latest(); ok {
		data, err := json.Marshal(snap)
		if err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
		}
	}

	for {
		select {
		case snap, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}

// writeJSON serializes the document. Encoding a well-formed snapshot
// cannot fail; an error here is a programming defect and is only logged.
func (s *Server) writeJSON(w http.ResponseWriter, snap store.Snapshot) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("failed to encode snapshot response", "error", err)
	}
}
