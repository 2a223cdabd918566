package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ipex/docregistro/internal/buildinfo"
	"github.com/ipex/docregistro/internal/config"
	"github.com/ipex/docregistro/internal/middleware"
	"github.com/ipex/docregistro/internal/models"
	"github.com/ipex/docregistro/internal/services/archive"
	"github.com/ipex/docregistro/internal/services/records"
	"github.com/ipex/docregistro/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// UserRepository is the account storage used by the auth routes
type UserRepository interface {
	Create(ctx context.Context, user *models.UserAuth) error
	FindByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	FindByID(ctx context.Context, id string) (*models.UserAuth, error)
	TouchLastLogin(ctx context.Context, user *models.UserAuth, at time.Time) error
}

// Pinger checks database reachability for /health
type Pinger interface {
	Ping() error
}

// Deps are the collaborators of the HTTP layer
type Deps struct {
	Config  *config.Config
	Users   UserRepository
	Records *records.Service
	Archive archive.Archiver // Nop when nil
	Hub     *websocket.Hub   // optional
	DB      Pinger           // optional
	Logger  *zap.Logger
	Now     func() time.Time
}

// Router wraps the mux router and the services behind it
type Router struct {
	*mux.Router
	cfg     *config.Config
	users   UserRepository
	records *records.Service
	archive archive.Archiver
	hub     *websocket.Hub
	db      Pinger
	logger  *zap.Logger
	now     func() time.Time
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	r := &Router{
		Router:  mux.NewRouter(),
		cfg:     deps.Config,
		users:   deps.Users,
		records: deps.Records,
		archive: deps.Archive,
		hub:     deps.Hub,
		db:      deps.DB,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if r.archive == nil {
		r.archive = archive.Nop{}
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}

	r.Use(middleware.RequestLogger(r.logger))
	requireAuth := middleware.AuthMiddleware(r.cfg.JWTSecret)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/logout", r.logout).Methods("POST")
	auth.Handle("/me", requireAuth(http.HandlerFunc(r.me))).Methods("GET")

	r.HandleFunc("/api/status", r.getStatus).Methods("GET")

	// Record routes (protected)
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(requireAuth)
	protected.HandleFunc("/options", r.listOptions).Methods("GET")
	protected.HandleFunc("/records", r.listRecords).Methods("GET")
	protected.HandleFunc("/records", r.createRecord).Methods("POST")
	protected.HandleFunc("/records/deleted", r.listDeletedRecords).Methods("GET")
	protected.HandleFunc("/records/export.csv", r.exportCSV).Methods("GET")
	protected.HandleFunc("/records/export.pdf", r.exportPDF).Methods("GET")
	protected.HandleFunc("/records/{id:[0-9]+}", r.getRecord).Methods("GET")
	protected.HandleFunc("/records/{id:[0-9]+}", r.softDeleteRecord).Methods("DELETE")
	protected.HandleFunc("/records/{id:[0-9]+}/restore", r.restoreRecord).Methods("POST")
	protected.HandleFunc("/records/{id:[0-9]+}/permanent", r.permanentlyDeleteRecord).Methods("DELETE")
	protected.HandleFunc("/records/{id:[0-9]+}/email", r.emailRecord).Methods("POST")
	protected.HandleFunc("/records/{id:[0-9]+}/receipt.pdf", r.receiptPDF).Methods("GET")

	// Live record events
	r.Handle("/ws", requireAuth(http.HandlerFunc(r.serveWs))).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	if r.db != nil {
		if err := r.db.Ping(); err != nil {
			r.logger.Error("Health check failed", zap.Error(err))
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "error",
				"database": "unreachable",
			})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// getStatus returns the current status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	status := map[string]interface{}{
		"status": "running",
		"build":  buildinfo.Get(),
		"env":    r.cfg.NodeEnv,
	}
	if r.hub != nil {
		status["wsClients"] = r.hub.ClientCount()
	}
	respondJSON(w, http.StatusOK, status)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
