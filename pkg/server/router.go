// pkg/server/router.go - HTTP routes of the catalog server.

package server

import (
	"crypto/subtle"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/windowsadmins/appstore/pkg/catalog"
	"github.com/windowsadmins/appstore/pkg/metrics"
	"github.com/windowsadmins/appstore/pkg/web"
)

// Options configures the catalog router.
type Options struct {
	// APIToken, when set, is required in X-API-Key on every mutating route.
	APIToken       string
	DownloadsPath  string
	LogosPath      string
	AllowedOrigins []string
	Registry       *prometheus.Registry
}

// NewRouter serves the catalog under /software and /api/software, plus the
// asset routes the resolved URLs point at.
func NewRouter(svc *catalog.Service, opts Options) http.Handler {
	h := &softwareHandler{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(web.RequestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry))
	}

	softwareRoutes := func(r chi.Router) {
		r.Get("/", h.List)
		r.With(authMiddleware(opts.APIToken)).Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(authMiddleware(opts.APIToken)).Put("/", h.Update)
			r.With(authMiddleware(opts.APIToken)).Delete("/", h.Delete)
		})
	}
	r.Route("/software", softwareRoutes)
	r.Route("/api/software", softwareRoutes)
	r.Get("/admin/software", h.List)

	r.Get("/"+catalog.DownloadRoute+"/{filename}", assetHandler(opts.DownloadsPath, true))
	r.Get("/"+catalog.LogoRoute+"/{filename}", assetHandler(opts.LogosPath, false))

	return web.CORS(opts.AllowedOrigins, r)
}

func authMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				web.WriteJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
