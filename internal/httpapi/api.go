// Package httpapi exposes the identity service over HTTP: registration,
// login, logout and profile retrieval for riders (/users) and drivers
// (/captains), plus the operational endpoints.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"swiftride.org/internal/auth"
	"swiftride.org/internal/obs"
)

// ReadyProbe reports backend readiness (DB ping when one is configured).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        *auth.Service
	readyProbe ReadyProbe
	version    string

	rateBurst  int
	ratePerSec int
}

// Option configures the API.
type Option func(*API)

// WithRateLimit overrides the per-IP limit applied to credential endpoints.
func WithRateLimit(burst, perSec int) Option {
	return func(a *API) {
		a.rateBurst = burst
		a.ratePerSec = perSec
	}
}

func New(svc *auth.Service, rp ReadyProbe, version string, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		svc:        svc,
		readyProbe: rp,
		version:    version,
		rateBurst:  20,
		ratePerSec: 10,
	}
	for _, opt := range opts {
		opt(a)
	}

	// Credential endpoints carry a per-IP rate limit: auth failures are
	// terminal, never retried server-side, so brute force is the only
	// repeat-caller pattern worth absorbing.
	limited := func(h http.HandlerFunc) http.Handler {
		return RateLimit(h, a.rateBurst, a.ratePerSec)
	}

	a.mux.Handle("POST /users/register", limited(a.handleUserRegister))
	a.mux.Handle("POST /users/login", limited(a.handleUserLogin))
	a.mux.Handle("GET /users/profile", a.requireUser(http.HandlerFunc(a.handleUserProfile)))
	a.mux.Handle("POST /users/logout", a.requireUser(http.HandlerFunc(a.handleUserLogout)))

	a.mux.Handle("POST /captains/register", limited(a.handleCaptainRegister))
	a.mux.Handle("POST /captains/login", limited(a.handleCaptainLogin))
	a.mux.Handle("GET /captains/profile", a.requireCaptain(http.HandlerFunc(a.handleCaptainProfile)))
	a.mux.Handle("POST /captains/logout", a.requireCaptain(http.HandlerFunc(a.handleCaptainLogout)))

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = WithDeadline(h, 10*time.Second)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "swiftride-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
