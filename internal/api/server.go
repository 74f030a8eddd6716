// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bm-streak/internal/logging"
	"github.com/bm-streak/internal/metrics"
	"github.com/bm-streak/internal/service"
	"github.com/bm-streak/internal/types"
	"github.com/gorilla/mux"
)

// Service interfaces for dependency injection and testing

// CheckInServiceInterface defines the interface for check-in operations
type CheckInServiceInterface interface {
	CheckIn(ctx context.Context, identity string) (*service.CheckInResult, error)
}

// SendServiceInterface defines the interface for send operations
type SendServiceInterface interface {
	Send(ctx context.Context, sender, recipient string) (*service.SendResult, error)
}

// QueryServiceInterface defines the interface for read-only queries
type QueryServiceInterface interface {
	GetStreak(ctx context.Context, identity string) (*types.UserStreak, error)
	ListActiveToday(ctx context.Context) ([]*types.UserStreak, error)
	GetLeaderboard(ctx context.Context) ([]types.LeaderboardEntry, error)
	GetSendLimitStatus(ctx context.Context, identity string) (*types.SendLimitStatus, error)
	ListReceived(ctx context.Context, identity string, limit int) ([]types.Receipt, error)
}

// NotificationForwarder relays a notification to a caller-supplied URL
type NotificationForwarder interface {
	Forward(ctx context.Context, url, token, title, body string) (json.RawMessage, error)
}

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	router         *mux.Router
	httpServer     *http.Server
	checkInService CheckInServiceInterface
	sendService    SendServiceInterface
	queryService   QueryServiceInterface
	forwarder      NotificationForwarder
	health         HealthChecker
	config         *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RateLimitRPS    float64 // Requests per second per client IP
	RateLimitBurst  int
	TrustProxy      bool // Key rate limits on X-Forwarded-For
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	checkInService CheckInServiceInterface,
	sendService SendServiceInterface,
	queryService QueryServiceInterface,
	forwarder NotificationForwarder,
	health HealthChecker,
) *Server {
	s := &Server{
		router:         mux.NewRouter(),
		checkInService: checkInService,
		sendService:    sendService,
		queryService:   queryService,
		forwarder:      forwarder,
		health:         health,
		config:         config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RateLimitRPS, s.config.RateLimitBurst)
	rateLimiter.TrustProxy = s.config.TrustProxy

	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(metrics.InstrumentHandler)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Streak endpoints
	api.HandleFunc("/streak", s.handleGetStreak).Methods("GET", "OPTIONS")
	api.HandleFunc("/check-in", s.handleCheckIn).Methods("POST", "OPTIONS")
	api.HandleFunc("/active-users", s.handleActiveUsers).Methods("GET", "OPTIONS")
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET", "OPTIONS")

	// Send endpoints
	api.HandleFunc("/send-limit", s.handleSendLimit).Methods("GET", "OPTIONS")
	api.HandleFunc("/send-bm", s.handleSendBM).Methods("POST", "OPTIONS")
	api.HandleFunc("/received", s.handleReceived).Methods("GET", "OPTIONS")

	// Notification proxy
	api.HandleFunc("/notification", s.handleNotification).Methods("POST", "OPTIONS")
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			logging.WithError(err).Warn("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "unhealthy",
				"service": "bm-streak",
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "bm-streak",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Infof("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}
