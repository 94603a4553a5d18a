package publicapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Routes returns the content routes. The tenant must already be in the
// request context.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.RequireActive)
	r.Get("/all", h.All)
	r.Get("/config", h.Config)
	r.Get("/zones", h.Zones)
	r.Get("/schedule", h.Schedule)
	r.Get("/schedule/zones/{zoneID}", h.ZoneSchedule)
	r.Get("/events", h.Events)
	r.Get("/alerts", h.Alerts)
	r.Get("/facilities", h.Facilities)
	r.Get("/road-closures", h.RoadClosures)
	r.Get("/pages", h.Pages)
	r.Get("/pages/{slug}", h.Page)
	r.Get("/waste-items", h.WasteItems)
	r.Get("/waste-items/search", h.SearchWasteItems)
	return r
}

// APIRoutes returns the router mounted at /api/v1: the by-ID routes under
// /m/{municipalityID} and the host-resolved routes at the root. Browsers
// may call it from allowedOrigins; an empty list allows any origin.
func APIRoutes(h *Handler, allowedOrigins []string) chi.Router {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.With(h.ByID).Mount("/m/{municipalityID}", Routes(h))
	r.Mount("/", Routes(h))
	return r
}
