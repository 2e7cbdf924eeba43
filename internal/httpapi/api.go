// Package httpapi is the thin HTTP layer over the auth core: it parses
// requests, calls the service and renders typed failures as status codes.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"booknet.org/internal/auth"
	"booknet.org/internal/obs"
)

// ReadyProbe reports readiness, pinging the database when one is wired.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options configures the API.
type Options struct {
	Service       *auth.Service
	Authenticator *auth.Authenticator
	ReadyProbe    ReadyProbe
	Version       string

	// Roles a single registration may request. Zero means the default cap.
	MaxRolesPerRegistration int

	RateBurst     int
	RatePerSecond int
	MaxBodyBytes  int64
}

const (
	defaultRoleCap       = 2
	defaultRateBurst     = 20
	defaultRatePerSecond = 10
	defaultMaxBodyBytes  = 1 << 16
)

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	svc        *auth.Service
	authn      *auth.Authenticator
	readyProbe ReadyProbe
	version    string

	roleCap       int
	rateBurst     int
	ratePerSecond int
	maxBodyBytes  int64
}

// New builds the API and its routes.
func New(opts Options) *API {
	a := &API{
		mux:           http.NewServeMux(),
		svc:           opts.Service,
		authn:         opts.Authenticator,
		readyProbe:    opts.ReadyProbe,
		version:       opts.Version,
		roleCap:       opts.MaxRolesPerRegistration,
		rateBurst:     opts.RateBurst,
		ratePerSecond: opts.RatePerSecond,
		maxBodyBytes:  opts.MaxBodyBytes,
	}
	if a.roleCap <= 0 {
		a.roleCap = defaultRoleCap
	}
	if a.rateBurst <= 0 {
		a.rateBurst = defaultRateBurst
	}
	if a.ratePerSecond <= 0 {
		a.ratePerSecond = defaultRatePerSecond
	}
	if a.maxBodyBytes <= 0 {
		a.maxBodyBytes = defaultMaxBodyBytes
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)

	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/register", a.handleRegister)
	a.mux.HandleFunc("/v1/me", a.handleMe)

	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSecond)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "booknet-auth",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// handleMe echoes the authenticated principal: the token subject and the
// authority set embedded at issuance.
func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":     principal.Subject,
		"authorities": principal.Authorities,
	})
}
