// Package publicapi serves the read-only content API used by the mobile
// app and the public website. The same routes are mounted twice: under
// /api/v1 for the tenant resolved from the host, and under
// /api/v1/m/{municipalityID} for clients that name the municipality.
package publicapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/civickey/civickey/internal/app/content"
	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/app/system/tenant"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MunicipalityChecker reports whether a municipality is active.
type MunicipalityChecker interface {
	IsActiveMunicipality(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	Content *content.Service
	Munis   MunicipalityChecker
	Log     *zap.Logger
}

func NewHandler(svc *content.Service, munis MunicipalityChecker, logger *zap.Logger) *Handler {
	return &Handler{Content: svc, Munis: munis, Log: logger}
}

// ByID scopes the request to the {municipalityID} URL parameter.
func (h *Handler) ByID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "municipalityID")
		if !inputval.IsSlug(id) {
			httpjson.Error(w, http.StatusNotFound, "municipality not found")
			return
		}
		r = r.WithContext(tenant.WithInfo(r.Context(), &tenant.Info{
			MunicipalityID: id,
			Mode:           tenant.ModeExplicit,
		}))
		next.ServeHTTP(w, r)
	})
}

// RequireActive responds 404 unless the request's tenant is an active
// municipality.
func (h *Handler) RequireActive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := tenant.IDFromRequest(r)
		if id == "" {
			httpjson.Error(w, http.StatusNotFound, "municipality not found")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		ok, err := h.Munis.IsActiveMunicipality(ctx, id)
		cancel()
		if err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
		if !ok {
			httpjson.Error(w, http.StatusNotFound, "municipality not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// All serves the aggregate snapshot. It is 200 even when some parts
// failed; those are listed under "errors".
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap := h.Content.FetchAll(ctx, tenant.IDFromRequest(r))
	if !snap.Complete() {
		h.Log.Warn("partial snapshot",
			zap.String("municipality_id", snap.MunicipalityID),
			zap.Any("errors", snap.Errors))
	}
	httpjson.OK(w, snap)
}

func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.Config(ctx, muni)
	})
}

func (h *Handler) Zones(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.Zones(ctx, muni)
	})
}

func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.Schedule(ctx, muni)
	})
}

// ZoneSchedule serves GET /schedule/zones/{zoneID}. Unknown zones are 404.
func (h *Handler) ZoneSchedule(w http.ResponseWriter, r *http.Request) {
	zoneID := chi.URLParam(r, "zoneID")
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.ZoneSchedule(ctx, muni, zoneID)
	})
}

// Events serves upcoming events. ?limit= caps the count.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.UpcomingEvents(ctx, muni, limit)
	})
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.ActiveAlerts(ctx, muni)
	})
}

func (h *Handler) Facilities(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.Facilities(ctx, muni)
	})
}

func (h *Handler) RoadClosures(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.RoadClosures(ctx, muni)
	})
}

func (h *Handler) Pages(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.PublishedPages(ctx, muni)
	})
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.PageBySlug(ctx, muni, slug)
	})
}

func (h *Handler) WasteItems(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.WasteItems(ctx, muni)
	})
}

// SearchWasteItems serves GET /waste-items/search?q=. Queries shorter than
// two characters return an empty list.
func (h *Handler) SearchWasteItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	h.serve(w, r, func(ctx context.Context, muni string) (any, error) {
		return h.Content.SearchWasteItems(ctx, muni, q)
	})
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, muni string) (any, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := load(ctx, tenant.IDFromRequest(r))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, v)
}
