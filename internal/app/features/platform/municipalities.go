package platform

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/app/system/validators"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ListMunicipalities lists active municipalities, or all of them with
// ?all=1.
func (h *Handler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	list, err := h.Munis.List(ctx, r.URL.Query().Get("all") == "1")
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, list)
}

func (h *Handler) GetMunicipality(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	m, err := h.Munis.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, m)
}

type createMunicipalityRequest struct {
	ID       string             `json:"id"`
	Name     models.Localized   `json:"name"`
	Province string             `json:"province"`
	Colors   models.BrandColors `json:"colors"`
	Contact  models.ContactInfo `json:"contact"`
	Active   bool               `json:"active"`
}

// CreateMunicipality adds a tenant. The ID is permanent: it is the
// subdomain and the key of every tenant document.
func (h *Handler) CreateMunicipality(w http.ResponseWriter, r *http.Request) {
	var req createMunicipalityRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	m := models.Municipality{
		ID:       req.ID,
		Name:     req.Name,
		Province: req.Province,
		Colors:   req.Colors,
		Contact:  req.Contact,
		Active:   req.Active,
	}
	if err := validators.MunicipalityProfile(m); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	created, err := h.Munis.Create(ctx, m)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("municipality created", zap.String("municipality_id", created.ID), actor(r))
	httpjson.Write(w, http.StatusCreated, created)
}

type activeRequest struct {
	Active bool `json:"active"`
}

// SetMunicipalityActive activates or deactivates a tenant. A deactivated
// tenant stops resolving on every routing mode, so its custom domain is
// dropped from the host cache.
func (h *Handler) SetMunicipalityActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	m, err := h.Munis.SetActive(ctx, chi.URLParam(r, "id"), req.Active)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if m.HasCustomDomain() && h.Hosts != nil {
		h.Hosts.Invalidate(ctx, m.Website.CustomDomain)
	}
	h.Log.Info("municipality activation changed",
		zap.String("municipality_id", m.ID),
		zap.Bool("active", m.Active),
		actor(r))
	httpjson.OK(w, m)
}
