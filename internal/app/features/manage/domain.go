package manage

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// domainView is what the console shows on the custom domain screen.
type domainView struct {
	Target  string                 `json:"target"`
	Website models.WebsiteSettings `json:"website"`
}

type domainRequest struct {
	Host string `json:"host"`
}

// Domain returns the custom domain settings and the CNAME target.
func (h *Handler) Domain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	m, err := h.Munis.GetByID(ctx, municipality(r))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, domainView{Target: h.Domains.Target(), Website: m.Website})
}

// VerifyDomain checks the DNS of a host without saving it.
func (h *Handler) VerifyDomain(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[domainRequest](w, r, nil)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Domains.Verify(ctx, req.Host); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]bool{"verified": true})
}

// SetDomain verifies, registers and assigns a custom domain.
func (h *Handler) SetDomain(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[domainRequest](w, r, nil)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	m, err := h.Domains.Add(ctx, municipality(r), req.Host)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("custom domain set", zap.String("municipality_id", m.ID), zap.String("host", m.Website.CustomDomain), actor(r))
	httpjson.OK(w, domainView{Target: h.Domains.Target(), Website: m.Website})
}

// RemoveDomain detaches the custom domain.
func (h *Handler) RemoveDomain(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()
	m, err := h.Domains.Remove(ctx, municipality(r))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("custom domain removed", zap.String("municipality_id", m.ID), actor(r))
	httpjson.OK(w, domainView{Target: h.Domains.Target(), Website: m.Website})
}
