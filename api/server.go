package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/wricardo/footprints/logging"
	"github.com/wricardo/footprints/transport/websocket"
)

// Relay is the hub behind the API.
type Relay interface {
	Participants(ctx context.Context) ([]string, error)
	Metrics() *websocket.Metrics
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Server represents the relay HTTP server
type Server struct {
	relay  Relay
	log    *zap.SugaredLogger
	router *mux.Router
}

// NewServer creates a new API server
func NewServer(relay Relay, log *zap.SugaredLogger) *Server {
	s := &Server{
		relay:  relay,
		log:    logging.OrNop(log),
		router: mux.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.accessLog)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS")
	api.HandleFunc("/participants", s.handleParticipants).Methods("GET", "OPTIONS")
	api.HandleFunc("/metrics", s.handleMetrics).Methods("GET", "OPTIONS")

	// Routes above match by method; anything else on their paths lands here.
	for _, path := range []string{"/health", "/participants", "/metrics"} {
		api.HandleFunc(path, handleMethodNotAllowed)
	}

	// WebSocket
	s.router.HandleFunc("/ws", s.relay.ServeWS)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugw("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, r.Method+" not allowed on "+r.URL.Path)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ParticipantsResponse is the body of GET /api/participants.
type ParticipantsResponse struct {
	Participants []string `json:"participants"`
	Leader       string   `json:"leader,omitempty"`
}

func (s *Server) handleParticipants(w http.ResponseWriter, r *http.Request) {
	ids, err := s.relay.Participants(r.Context())
	if err != nil {
		s.log.Errorw("failed to list participants", "error", err)
		respondError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if ids == nil {
		ids = []string{}
	}

	leader, _ := websocket.ElectLeader(ids)
	respondJSON(w, http.StatusOK, ParticipantsResponse{
		Participants: ids,
		Leader:       leader,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.relay.Metrics().Snapshot())
}
