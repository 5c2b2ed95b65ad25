// Package server exposes the HTTP API: login/verify/logout, the chat message
// endpoint, the exchange history listing, and status/metrics. Authentication
// is a Bearer JWT; everything behind requireAuth sees the verified claims.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fieldbot/internal/auth"
	"fieldbot/internal/domain"
	"fieldbot/internal/metrics"
)

const (
	maxBodySize    = 1 << 20 // 1MB
	requestTimeout = 60 * time.Second
)

// History lists an agent's recent exchanges, oldest to newest.
type History interface {
	RecentExchanges(ctx context.Context, agentID int64) ([]domain.Exchange, error)
}

// Server is the HTTP front of the bot.
type Server struct {
	host    string
	port    int
	version string

	tokens    *auth.TokenService
	agents    domain.AgentDirectory
	responder domain.Responder
	history   History
	logger    *slog.Logger

	metricsHandler http.HandlerFunc
	metricsPath    string
	server         *http.Server

	requests *metrics.Counter
	logins   *metrics.Counter
}

type Config struct {
	Host      string
	Port      int
	Version   string
	Tokens    *auth.TokenService
	Agents    domain.AgentDirectory
	Responder domain.Responder
	History   History
	Logger    *slog.Logger
	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.HandlerFunc
	MetricsPath    string
}

func New(cfg Config) *Server {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 5000
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	return &Server{
		host:           cfg.Host,
		port:           cfg.Port,
		version:        cfg.Version,
		tokens:         cfg.Tokens,
		agents:         cfg.Agents,
		responder:      cfg.Responder,
		history:        cfg.History,
		logger:         cfg.Logger,
		metricsHandler: cfg.MetricsHandler,
		metricsPath:    cfg.MetricsPath,

		requests: metrics.Collector.Counter("fieldbot_http_requests_total", "HTTP requests served", ""),
		logins:   metrics.Collector.Counter("fieldbot_logins_total", "Successful logins", ""),
	}
}

// Handler builds the route table. Split out of Start so tests can drive it
// with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.count(s.handleLogin))
	mux.HandleFunc("GET /api/auth/verify", s.count(s.handleVerify))
	mux.HandleFunc("POST /api/auth/logout", s.count(s.handleLogout))

	mux.HandleFunc("POST /api/chat/message", s.count(s.requireAuth(s.handleMessage)))
	mux.HandleFunc("GET /api/chat/history", s.count(s.requireAuth(s.handleHistory)))

	mux.HandleFunc("GET /status", s.handleStatus)
	if s.metricsHandler != nil {
		mux.HandleFunc("GET "+s.metricsPath, s.metricsHandler)
	}
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	s.logger.Info("api server started", "addr", "http://"+addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

func (s *Server) count(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requests.Inc()
		next(w, r)
	}
}

type ctxKey struct{}

// requireAuth verifies the Bearer token and stashes the claims in the request
// context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		claims, err := s.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	}
}

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ctxKey{}).(*auth.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return "", false
	}
	return h[len(prefix):], true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().Format(time.RFC3339),
	})
}
