package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"tattoovision/internal/http/handlers"
	"tattoovision/internal/metrics"
	"tattoovision/internal/middleware"
)

// NewRouter mounts every route on a chi mux. lookup may be nil when no GeoIP
// database is configured.
func NewRouter(app *handlers.App, m *metrics.Metrics, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	defaultLocale := "en"
	var origins []string
	rateLimit := 0
	if app.Config != nil {
		defaultLocale = app.Config.DefaultLocale
		origins = app.Config.CORSAllowedOrigins
		rateLimit = app.Config.RateLimitPerMin
	}

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(origins),
		middleware.I18N(defaultLocale, lookup),
		m.Middleware,
	)
	r.NotFound(app.NotFound)

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// AI-backed routes share one per-client budget.
	aiLimit := middleware.RateLimit(rateLimit, time.Minute, app.RateLimited)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/settings", app.Settings)
		r.Get("/styles", app.Styles)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", app.GetSession)
				r.Delete("/", app.DeleteSession)
				r.With(aiLimit).Post("/generate", app.Generate)
				r.Route("/proposals/{index}", func(r chi.Router) {
					r.With(aiLimit).Post("/image", app.GenerateImage)
					r.With(aiLimit).Post("/refine", app.Refine)
					r.Post("/save", app.Save)
				})
			})
		})

		r.Route("/library", func(r chi.Router) {
			r.Get("/", app.ListDesigns)
			r.Get("/{designID}", app.GetDesign)
			r.Delete("/{designID}", app.DeleteDesign)
		})

		r.Route("/visualizer", func(r chi.Router) {
			r.Post("/placement", app.Placement)
			r.With(aiLimit).Post("/ar-preview", app.ARPreview)
		})
	})

	return r
}
