package platform

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authutil"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func actor(r *http.Request) zap.Field {
	p, _ := auth.CurrentPrincipal(r)
	return zap.String("uid", p.UID)
}

// ListAdmins lists the admins of ?municipality=, or the super-admins when
// the parameter is absent.
func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	var (
		list []models.AdminAccount
		err  error
	)
	if muni := r.URL.Query().Get("municipality"); muni != "" {
		list, err = h.Admins.ListByMunicipality(ctx, muni)
	} else {
		list, err = h.Admins.ListSuperAdmins(ctx)
	}
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if list == nil {
		list = []models.AdminAccount{}
	}
	httpjson.OK(w, list)
}

type createAdminRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	MunicipalityID string `json:"municipalityId"`
	Password       string `json:"password"`
}

// CreateAdmin creates an admin account and its credentials. Without a
// password the account gets a random one and a reset code is emailed, so
// the new admin picks their own.
func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	invite := req.Password == ""
	if invite {
		req.Password = uuid.NewString()
	} else if err := authutil.ValidatePassword(req.Password); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if req.MunicipalityID != "" {
		if _, err := h.Munis.GetByID(ctx, req.MunicipalityID); err != nil {
			uierrors.Respond(w, r, h.Log, err)
			return
		}
	}

	acct, err := h.Admins.Create(ctx, models.AdminAccount{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Name:           req.Name,
		Role:           req.Role,
		MunicipalityID: req.MunicipalityID,
		Active:         true,
	})
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if err := h.Creds.Register(ctx, acct.ID, acct.Email, req.Password); err != nil {
		if derr := h.Admins.Delete(ctx, acct.ID); derr != nil {
			h.Log.Error("roll back admin account failed", zap.String("new_uid", acct.ID), zap.Error(derr))
		}
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if invite {
		if err := h.Creds.RequestReset(ctx, acct.Email); err != nil {
			h.Log.Warn("invitation email failed", zap.String("new_uid", acct.ID), zap.Error(err))
		}
	}

	h.Log.Info("admin created",
		zap.String("new_uid", acct.ID),
		zap.String("role", acct.Role),
		zap.String("municipality_id", acct.MunicipalityID),
		actor(r))
	httpjson.Write(w, http.StatusCreated, acct)
}

type updateAdminRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// UpdateAdmin changes the name and role of a municipality admin. Roles
// cannot be raised to super-admin.
func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req updateAdminRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	current, err := h.Admins.Get(ctx, chi.URLParam(r, "uid"))
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	if current.IsSuperAdmin() {
		httpjson.Error(w, http.StatusConflict, "super-admin accounts cannot be edited")
		return
	}
	acct, err := h.Admins.UpdateProfile(ctx, current.MunicipalityID, current.ID, req.Name, req.Role)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("admin updated", zap.String("target_uid", acct.ID), zap.String("role", acct.Role), actor(r))
	httpjson.OK(w, acct)
}

// SetAdminActive enables or disables an account. Super-admins cannot
// disable themselves.
func (h *Handler) SetAdminActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	uid := chi.URLParam(r, "uid")
	if p, _ := auth.CurrentPrincipal(r); p.UID == uid && !req.Active {
		httpjson.Error(w, http.StatusConflict, "you cannot deactivate your own account")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	acct, err := h.Admins.SetActive(ctx, uid, req.Active)
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.Log.Info("admin activation changed", zap.String("target_uid", acct.ID), zap.Bool("active", acct.Active), actor(r))
	httpjson.OK(w, acct)
}
