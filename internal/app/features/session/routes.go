package session

import (
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted at /admin/session behind the session manager's
// LoadPrincipal middleware.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/password-reset", h.RequestReset)
	r.Post("/password-reset/confirm", h.ConfirmReset)
	r.Post("/activity", h.Activity)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/me", h.Me)
		r.Post("/municipality", h.SwitchMunicipality)
	})
	return r
}
