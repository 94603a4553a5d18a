package platform

import (
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /admin/platform behind the session manager's
// LoadPrincipal.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	can := func(f authz.Feature, a authz.Action) chi.Router {
		return r.With(authz.Require(f, a, h.Metrics, h.Log))
	}

	can(authz.Municipalities, authz.View).Get("/municipalities", h.ListMunicipalities)
	can(authz.Municipalities, authz.View).Get("/municipalities/{id}", h.GetMunicipality)
	can(authz.Municipalities, authz.Create).Post("/municipalities", h.CreateMunicipality)
	can(authz.Municipalities, authz.Edit).Put("/municipalities/{id}/active", h.SetMunicipalityActive)

	can(authz.AdminManagement, authz.View).Get("/admins", h.ListAdmins)
	can(authz.AdminManagement, authz.Create).Post("/admins", h.CreateAdmin)
	can(authz.AdminManagement, authz.Edit).Put("/admins/{uid}", h.UpdateAdmin)
	can(authz.AdminManagement, authz.Edit).Put("/admins/{uid}/active", h.SetAdminActive)
	return r
}
