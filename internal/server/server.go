package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/larder/internal/handler"
	"github.com/dukerupert/larder/internal/middleware"
	"github.com/dukerupert/larder/internal/store"
	ws "github.com/dukerupert/larder/internal/websocket"
)

// Config carries the request-level toggles that differ between
// production, development, and tests.
type Config struct {
	Production bool
	RateLimit  bool
	StaticDir  string
}

const (
	rateLimitMax    = 100
	rateLimitWindow = 15 * time.Minute
)

type Server struct {
	db          *sql.DB
	cfg         Config
	itemStore   *store.ItemStore
	itemH       *handler.ItemHandler
	hub         *ws.Hub
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	itemStore := store.NewItemStore(db)

	return &Server{
		db:          db,
		cfg:         cfg,
		itemStore:   itemStore,
		itemH:       handler.NewItemHandler(itemStore, hub, logger.With("component", "item")),
		hub:         hub,
		rateLimiter: middleware.NewRateLimiter(rateLimitMax, rateLimitWindow),
		logger:      logger,
	}
}

// Store returns the item store, for cleanup between tests.
func (s *Server) Store() *store.ItemStore {
	return s.itemStore
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/items", s.api(s.itemH.List))
	mux.HandleFunc("GET /api/items/stats", s.api(s.itemH.Stats))
	mux.HandleFunc("GET /api/items/{id}", s.api(s.itemH.Get))
	mux.HandleFunc("POST /api/items", s.api(s.itemH.Create))
	mux.HandleFunc("PUT /api/items/{id}", s.api(s.itemH.Update))
	mux.HandleFunc("DELETE /api/items/{id}", s.api(s.itemH.Delete))
	mux.HandleFunc("GET /api/health", s.api(s.healthHandler))

	// Unmatched API routes get a JSON 404 rather than the file server
	mux.HandleFunc("/api/", s.notFoundHandler)

	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	if s.cfg.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(s.cfg.StaticDir)))
	} else {
		mux.HandleFunc("/", s.notFoundHandler)
	}

	var h http.Handler = mux
	h = middleware.Recover(s.logger.With("component", "recover"), s.cfg.Production)(h)
	h = middleware.RequestLogger(s.logger.With("component", "http"))(h)
	h = middleware.CORS(h)
	h = middleware.SecurityHeaders(h)
	return h
}

// api applies the per-IP rate limit to an API handler when enabled.
func (s *Server) api(h http.HandlerFunc) http.HandlerFunc {
	if !s.cfg.RateLimit {
		return h
	}
	limited := s.rateLimiter.Middleware(middleware.RealIP)(h)
	return limited.ServeHTTP
}

// healthHandler reports liveness plus store connectivity.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err := s.itemStore.Ping(); err != nil {
		s.logger.Error("health check", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":    "error",
			"timestamp": timestamp,
			"database":  "disconnected",
			"error":     "Database connection failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": timestamp,
		"database":  "connected",
	})
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":      "Not Found",
		"message":    fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path),
		"statusCode": http.StatusNotFound,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
