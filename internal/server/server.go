// Package server exposes the indicator engine over HTTP and pushes dataset
// refresh events to websocket clients.
package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-dashboard/internal/dataset"
	"github.com/rxtech-lab/argo-dashboard/internal/engine"
	"github.com/rxtech-lab/argo-dashboard/internal/logger"
	"github.com/rxtech-lab/argo-dashboard/internal/metrics"
	"github.com/rxtech-lab/argo-dashboard/internal/refresh"
	"github.com/rxtech-lab/argo-dashboard/internal/types"
	"github.com/rxtech-lab/argo-dashboard/pkg/errors"
)

// Refresher reloads the dataset on demand.
type Refresher interface {
	RefreshNow(ctx context.Context) (dataset.Snapshot, error)
	Status() refresh.Status
}

// Options configures a Server.
type Options struct {
	// DefaultParams are applied before any per-request overrides.
	DefaultParams map[types.IndicatorType][]any
	// AllowedOrigins lists websocket origins accepted besides same-origin; "*" accepts any.
	AllowedOrigins []string
}

// Server serves chart data for the current dataset snapshot.
type Server struct {
	engine    *engine.Engine
	store     *dataset.Store
	refresher Refresher
	metrics   *metrics.Metrics
	hub       *Hub
	log       *logger.Logger
	options   Options

	router   *mux.Router
	upgrader websocket.Upgrader

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server and registers its routes. refresher and m may be nil;
// without a refresher POST /api/refresh answers 503.
func NewServer(e *engine.Engine, store *dataset.Store, refresher Refresher, m *metrics.Metrics, options Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		engine:    e,
		store:     store,
		refresher: refresher,
		metrics:   m,
		hub:       NewHub(m, log),
		log:       log,
		options:   options,
		router:    mux.NewRouter(),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Use(s.instrument)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chart", s.handleChart).Methods(http.MethodGet)
	api.HandleFunc("/feature", s.handleFeature).Methods(http.MethodGet)
	api.HandleFunc("/features", s.handleFeatures).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/indicators", s.handleIndicators).Methods(http.MethodGet)
	api.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)

	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, errors.New(errors.ErrCodeDataNotFound, "route not found"))
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// NotifyRefresh pushes a refresh event for snapshot to every websocket client.
// It has the signature of refresh.Listener.
func (s *Server) NotifyRefresh(snapshot dataset.Snapshot) {
	s.hub.Broadcast(newEvent(EventRefresh, s.engine.Symbol(), snapshot))
}

// Start listens on address and serves in the background.
// An empty address or ":0" picks a free port.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeConfigInvalid, err, "failed to listen on %s", address)
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.httpServer = httpServer
	s.mu.Unlock()

	s.log.Info("HTTP server listening", zap.String("address", listener.Addr().String()))

	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Address returns the address the server listens on, or "" before Start.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown disconnects websocket clients and gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer == nil {
		return nil
	}

	return httpServer.Shutdown(ctx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.options.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return u.Host == r.Host
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.log.Warn("Websocket upgrade failed", zap.Error(err))

		return
	}

	c := newClient(s.hub, conn)

	if snapshot := s.store.Snapshot(); !snapshot.Empty() {
		hello := newEvent(EventHello, s.engine.Symbol(), snapshot)
		if payload, err := json.Marshal(hello); err == nil {
			c.send <- payload
		}
	}

	if !s.hub.add(c) {
		s.log.Debug("Refusing websocket client during shutdown")

		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		conn.Close()

		return
	}

	go c.writePump()
	go c.readPump()
}
