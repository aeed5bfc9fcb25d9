package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"medstock-agent/internal/app"
)

// Options carries the handler's configuration from main.
type Options struct {
	AllowedOrigins []string
	JWTSecret      string // empty disables authentication entirely
	AdminUser      string
	AdminPassword  string
	MetricsEnabled bool
	Logger         zerolog.Logger
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc  app.ApplicationService
	pool *pgxpool.Pool
	opts Options
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, pool *pgxpool.Pool, opts Options) http.Handler {
	h := &Handler{svc: svc, pool: pool, opts: opts}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(opts.Logger))
	r.Use(Recoverer(opts.Logger))
	r.Use(CORS(opts.AllowedOrigins))

	// ── Public ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	if opts.MetricsEnabled {
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	}

	// ── Protected API (auth is a no-op when no JWT secret is configured) ─────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Reference data
		r.Get("/api/locations", h.listLocations)
		r.Post("/api/locations", h.createLocation)
		r.Get("/api/locations/{id}", h.getLocation)
		r.Get("/api/items", h.listItems)
		r.Post("/api/items", h.createItem)
		r.Get("/api/items/{id}", h.getItem)

		// Ledger
		r.Post("/api/transactions", h.addTransaction)
		r.Post("/api/transactions/bulk", h.addBulkTransactions)
		r.Get("/api/transactions", h.listTransactions)
		r.Get("/api/stock/{locationID}/{itemID}", h.latestStock)

		// Analytics
		r.Get("/api/analytics/health", h.stockHealth)
		r.Get("/api/analytics/alerts", h.alerts)
		r.Get("/api/analytics/summary", h.summary)
		r.Get("/api/analytics/heatmap", h.heatmap)
		r.Get("/api/analytics/trends", h.trends)
		r.Get("/api/analytics/health/export", h.exportHealth)

		// Assistant
		r.Post("/api/chat", h.chat)
	})

	return r
}

// health returns service status and database reachability.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := h.pool.Ping(r.Context()); err != nil {
		dbStatus = "unreachable"
	}

	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	writeJSON(w, response{Status: "ok", Database: dbStatus})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

// pathID extracts a numeric URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional numeric query parameter, nil when absent.
func queryID(r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}
