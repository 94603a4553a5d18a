package site

import (
	"github.com/civickey/civickey/internal/app/system/tenant"
	"github.com/go-chi/chi/v5"
)

// Routes serves the website of the resolved tenant. Mounted at "/".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(tenant.RequireTenant)
	r.Get("/", h.RedirectRoot)
	r.Route("/{locale}", func(r chi.Router) {
		r.Use(h.WithLocale)
		r.Get("/", h.Home)
		r.Get("/collections", h.Collections)
		r.Get("/collections/{zoneID}", h.Zone)
		r.Get("/events", h.Events)
		r.Get("/news", h.News)
		r.Get("/facilities", h.Facilities)
		r.Get("/{slug}", h.Page)
	})
	return r
}
