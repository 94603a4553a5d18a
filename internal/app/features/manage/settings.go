package manage

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/app/system/validators"
	"go.uber.org/zap"
)

// Settings returns the municipality profile.
func (h *Handler) Settings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	m, err := h.Munis.GetByID(ctx, municipality(r))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, m)
}

// SaveSettings replaces the editable profile fields. Activation and the
// custom domain have their own routes and are ignored here.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	m, ok := decode(w, r, validators.MunicipalityProfile)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	updated, err := h.Munis.UpdateProfile(ctx, municipality(r), m)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("municipality profile updated", zap.String("municipality_id", updated.ID), actor(r))
	httpjson.OK(w, updated)
}
