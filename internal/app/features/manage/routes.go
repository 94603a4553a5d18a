package manage

import (
	"net/http"

	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /admin behind the session manager's LoadPrincipal.
// Every route needs a signed-in principal with an effective municipality.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Use(authz.RequireTenant)

	r.With(h.can(authz.Dashboard, authz.View)).Get("/dashboard", h.Dashboard)

	r.Route("/events", func(r chi.Router) { mount(h, r, h.events()) })
	r.Route("/alerts", func(r chi.Router) { mount(h, r, h.alerts()) })
	r.Route("/facilities", func(r chi.Router) { mount(h, r, h.facilities()) })
	r.Route("/road-closures", func(r chi.Router) { mount(h, r, h.roadClosures()) })
	r.Route("/zones", func(r chi.Router) { mount(h, r, h.zones()) })
	r.Route("/waste-items", func(r chi.Router) {
		mount(h, r, h.wasteItems())
		r.With(h.can(authz.WasteItems, authz.Create)).Post("/import", h.ImportWasteItems)
	})
	r.Route("/pages", func(r chi.Router) {
		mount(h, r, h.pages())
		r.With(h.can(authz.Pages, authz.Edit)).Put("/{id}/published", h.SetPublished)
	})

	r.With(h.can(authz.Schedule, authz.View)).Get("/schedule", h.Schedule)
	r.With(h.can(authz.Schedule, authz.Edit)).Put("/schedule", h.SaveSchedule)

	r.With(h.can(authz.MunicipalitySettings, authz.View)).Get("/settings", h.Settings)
	r.With(h.can(authz.MunicipalitySettings, authz.Edit)).Put("/settings", h.SaveSettings)

	r.With(h.can(authz.Domains, authz.View)).Get("/domain", h.Domain)
	r.With(h.can(authz.Domains, authz.Edit)).Post("/domain/verify", h.VerifyDomain)
	r.With(h.can(authz.Domains, authz.Edit)).Put("/domain", h.SetDomain)
	r.With(h.can(authz.Domains, authz.Edit)).Delete("/domain", h.RemoveDomain)
	return r
}

func (h *Handler) can(f authz.Feature, a authz.Action) func(http.Handler) http.Handler {
	return authz.Require(f, a, h.Metrics, h.Log)
}
