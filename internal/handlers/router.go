package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/xelth-com/shopdeskgo/internal/ai"
	"github.com/xelth-com/shopdeskgo/internal/buildinfo"
	"github.com/xelth-com/shopdeskgo/internal/config"
	"github.com/xelth-com/shopdeskgo/internal/middleware"
	"github.com/xelth-com/shopdeskgo/internal/production"
	"github.com/xelth-com/shopdeskgo/internal/services/etsy"
	"github.com/xelth-com/shopdeskgo/internal/store"
)

// Services bundles what the HTTP layer calls into.
// Connector, Sync and AI may be nil when their integration is not configured.
type Services struct {
	Users     store.UserStore
	Plans     store.PlanStore
	Planner   *production.Planner
	Connector *etsy.Connector
	Sync      *etsy.SyncService
	AI        *ai.Service
}

// Router wraps the mux router and its dependencies
type Router struct {
	*mux.Router
	cfg *config.Config
	svc Services
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, svc Services) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		cfg:    cfg,
		svc:    svc,
	}

	base := r.Router
	if cfg.Server.PathPrefix != "" {
		base = r.PathPrefix(cfg.Server.PathPrefix).Subrouter()
	}
	base.Use(middleware.RequestLogging)

	// Health check endpoint
	base.HandleFunc("/health", r.healthCheck).Methods("GET")
	base.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Auth routes
	auth := base.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	requireAuth := middleware.Auth(cfg.JWTSecret)

	// Edge-function compatible endpoints
	functions := base.PathPrefix("/functions").Subrouter()
	functions.Use(requireAuth)
	functions.HandleFunc("/etsy-oauth", r.etsyOAuth).Methods("POST")
	functions.HandleFunc("/etsy-sync", r.etsySync).Methods("POST")
	functions.HandleFunc("/analyze-listing", r.analyzeListing).Methods("POST")
	functions.HandleFunc("/generate-business-plan", r.generateBusinessPlan).Methods("POST")

	api := base.PathPrefix("/api").Subrouter()
	api.Use(requireAuth)

	// Marketplace connections
	api.HandleFunc("/etsy/connections", r.listConnections).Methods("GET")
	api.HandleFunc("/etsy/connections/{id}", r.disconnect).Methods("DELETE")

	// Production planning
	api.HandleFunc("/production/calculate", r.calculateBatch).Methods("POST")
	api.HandleFunc("/production/batches", r.listBatches).Methods("GET")
	api.HandleFunc("/production/batches", r.createBatch).Methods("POST")
	api.HandleFunc("/production/batches/{id}", r.getBatch).Methods("GET")
	api.HandleFunc("/production/batches/{id}/status", r.advanceBatch).Methods("PATCH")
	api.HandleFunc("/production/batches/{id}/sheet", r.batchSheet).Methods("GET")

	// Business plans
	api.HandleFunc("/plans", r.savePlan).Methods("POST")

	return r
}

// Handler returns the router wrapped with CORS handling
func (r *Router) Handler() http.Handler {
	origins := r.cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Client-Info", "Apikey", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return c.Handler(r.Router)
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"build":  buildinfo.Current(time.Now()),
		"integrations": map[string]bool{
			"etsy": r.svc.Connector != nil,
			"ai":   r.svc.AI != nil,
		},
	})
}

// currentUser returns the authenticated user id set by the auth middleware
func currentUser(req *http.Request) string {
	id, _ := middleware.UserIDFromContext(req.Context())
	return id
}

// pathID returns the {id} route variable. Ids that are not uuids cannot
// match a row, so they report store.ErrNotFound.
func pathID(req *http.Request) (string, error) {
	id := mux.Vars(req)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", store.ErrNotFound
	}
	return id, nil
}

// decodeJSON decodes the request body into v
func decodeJSON(w http.ResponseWriter, req *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(v)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, production.ErrInvalidInput),
		errors.Is(err, ai.ErrInvalidInput),
		errors.Is(err, etsy.ErrMissingCode),
		errors.Is(err, etsy.ErrStateMismatch):
		return http.StatusBadRequest
	case errors.Is(err, production.ErrNoRecipeConfigured):
		return http.StatusUnprocessableEntity
	case errors.Is(err, production.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, etsy.ErrNoActiveConnection),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case etsy.IsTokenExchange(err), etsy.IsTokenRefresh(err), etsy.IsProviderFetch(err):
		return http.StatusBadGateway
	case errors.Is(err, ai.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
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

// respondErr sends err with the status it maps to
func respondErr(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}
