package devices

import "github.com/go-chi/chi/v5"

// Routes is mounted at /api/v1/devices. A nil handler serves 503s.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	if h == nil {
		r.HandleFunc("/*", Disabled)
		return r
	}
	r.Put("/reminders", h.Register)
	r.Delete("/reminders", h.Unregister)
	return r
}
