package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/log"

	"github.com/devtrace/devtrace/internal/auth"
	"github.com/devtrace/devtrace/internal/cache"
	"github.com/devtrace/devtrace/internal/clientinfo"
	"github.com/devtrace/devtrace/internal/config"
	"github.com/devtrace/devtrace/internal/live"
	"github.com/devtrace/devtrace/internal/tracker"
	"github.com/devtrace/devtrace/internal/verify"
)

// Deps bundles everything the HTTP surface needs. The live hub is an
// explicit dependency rather than a process-wide singleton.
type Deps struct {
	DB       *sql.DB
	Cfg      *config.Config
	Auth     *auth.Verifier
	Hub      *live.Hub
	Recorder *tracker.Recorder
	Cache    *cache.ProjectCache
	Verify   *verify.Service
}

func Router(d Deps) *chi.Mux {
	trackHandler := &TrackHandler{Recorder: d.Recorder}
	projectHandler := &ProjectHandler{DB: d.DB, Cache: d.Cache}
	websiteHandler := &WebsiteHandler{Verify: d.Verify}
	liveHandler := &LiveHandler{DB: d.DB, Hub: d.Hub, Auth: d.Auth}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health)

		// Beacon ingestion: rate-limited per resolved client address,
		// fixed window, independent of project.
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(
				d.Cfg.RateLimit,
				d.Cfg.RateWindow,
				httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
					return clientinfo.ClientIP(r), nil
				}),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					jsonError(w, "Too many requests from this IP, please try again later", http.StatusTooManyRequests)
				}),
			))
			r.Post("/track", trackHandler.Track)
		})

		// Dashboard routes
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Middleware)
			r.Post("/projects", projectHandler.Create)
			r.Get("/mywebsites", projectHandler.MyWebsites)
			r.Get("/projects/{id}/visits", projectHandler.Visits)
			r.Get("/projects/{id}/stats", projectHandler.Stats)
			r.Delete("/projects/{id}", projectHandler.Delete)
		})

		// Ownership verification
		r.Post("/websites/add", websiteHandler.Add)
		r.Post("/websites/verify", websiteHandler.VerifySite)

		// Live channel; authenticates inside the handshake
		r.Get("/live", liveHandler.Subscribe)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, "Route not found", http.StatusNotFound)
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, http.StatusOK, map[string]any{
		"message":   "Server is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
