// Package session serves the admin console's session endpoints: sign-in,
// sign-out, the current principal, activity pings, password reset and the
// super-admin municipality switch.
package session

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/inputval"
	"github.com/civickey/civickey/internal/app/system/ratelimit"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// Authenticator is the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*models.AdminAccount, error)
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, password string) error
}

type Handler struct {
	Identity   Authenticator
	Sessions   *auth.SessionManager
	LoginLimit *ratelimit.LoginLimiter
	ResetLimit *ratelimit.Limiter
	Log        *zap.Logger
}

// NewHandler builds the handler with the default sign-in limits and a
// reset limit of 5 requests per client IP per 15 minutes.
func NewHandler(id Authenticator, sessions *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Identity:   id,
		Sessions:   sessions,
		LoginLimit: ratelimit.NewLoginLimiter(),
		ResetLimit: ratelimit.New(5, 15*time.Minute),
		Log:        logger,
	}
}

// Run sweeps the rate limiters until ctx is done.
func (h *Handler) Run(ctx context.Context) {
	go h.ResetLimit.Run(ctx)
	h.LoginLimit.Run(ctx)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,emailaddr" label:"Email"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type resetRequest struct {
	Email string `json:"email" validate:"required,emailaddr" label:"Email"`
}

type resetConfirmRequest struct {
	Email    string `json:"email" validate:"required,emailaddr" label:"Email"`
	Code     string `json:"code" validate:"required" label:"Code"`
	Password string `json:"password" validate:"required" label:"Password"`
}

type switchRequest struct {
	MunicipalityID string `json:"municipalityId"`
}

// meResponse describes the signed-in admin and what they may do.
type meResponse struct {
	UID                   string                           `json:"uid"`
	Email                 string                           `json:"email"`
	Name                  string                           `json:"name"`
	Role                  string                           `json:"role"`
	AssignedMunicipality  string                           `json:"assignedMunicipality,omitempty"`
	ActiveMunicipality    string                           `json:"activeMunicipality,omitempty"`
	EffectiveMunicipality string                           `json:"effectiveMunicipality,omitempty"`
	Permissions           map[authz.Feature][]authz.Action `json:"permissions"`
}

func newMe(p *auth.Principal) meResponse {
	perms := map[authz.Feature][]authz.Action{}
	for f, actions := range authz.Features() {
		for _, a := range actions {
			if authz.Can(p.Role, f, a) {
				perms[f] = append(perms[f], a)
			}
		}
		slices.Sort(perms[f])
	}
	return meResponse{
		UID:                   p.UID,
		Email:                 p.Email,
		Name:                  p.Name,
		Role:                  p.Role,
		AssignedMunicipality:  p.AssignedMunicipality,
		ActiveMunicipality:    p.ActiveMunicipality,
		EffectiveMunicipality: p.EffectiveMunicipality(),
		Permissions:           perms,
	}
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Error(w, http.StatusBadRequest, res.All())
		return
	}
	if ok, reason := h.LoginLimit.Check(r, req.Email); !ok {
		httpjson.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	acct, err := h.Identity.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.signInFailed(w, r, err)
		return
	}
	if err := h.Sessions.SignIn(w, r, acct.ID); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	h.LoginLimit.ResetEmail(req.Email)
	h.Log.Info("admin signed in", zap.String("uid", acct.ID), zap.String("role", acct.Role))

	p := &auth.Principal{
		UID:                  acct.ID,
		Email:                acct.Email,
		Name:                 acct.Name,
		Role:                 acct.Role,
		AssignedMunicipality: acct.MunicipalityID,
	}
	if p.IsSuperAdmin() {
		p.AssignedMunicipality = ""
	}
	httpjson.OK(w, newMe(p))
}

func (h *Handler) signInFailed(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		httpjson.Error(w, http.StatusUnauthorized, auth.Message(err))
	case errors.Is(err, auth.ErrAccountDisabled), errors.Is(err, auth.ErrNotAuthorized):
		_ = h.Sessions.SignOut(w, r)
		httpjson.Error(w, http.StatusForbidden, auth.Message(err))
	default:
		uierrors.Respond(w, r, h.Log, err)
	}
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		h.Log.Warn("sign-out failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.CurrentPrincipal(r)
	httpjson.OK(w, newMe(p))
}

// Activity handles POST /activity. It keeps the session alive; calls
// within the throttle window are accepted but not recorded.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	recorded, err := h.Sessions.RecordActivity(w, r)
	if errors.Is(err, auth.ErrSessionExpired) {
		httpjson.Error(w, http.StatusUnauthorized, auth.MsgSessionExpired)
		return
	}
	if err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, map[string]bool{"recorded": recorded})
}

// RequestReset handles POST /password-reset. The response is the same
// whether or not the email is known.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Error(w, http.StatusBadRequest, res.All())
		return
	}
	if !h.ResetLimit.Allow(ratelimit.ClientIP(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "Too many reset requests. Please try again later.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Identity.RequestReset(ctx, req.Email); err != nil {
		h.Log.Error("password reset request failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConfirmReset handles POST /password-reset/confirm.
func (h *Handler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if res := inputval.Validate(req); res.HasErrors() {
		httpjson.Error(w, http.StatusBadRequest, res.All())
		return
	}
	if !h.ResetLimit.Allow(ratelimit.ClientIP(r)) {
		httpjson.Error(w, http.StatusTooManyRequests, "Too many reset attempts. Please try again later.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	if err := h.Identity.ResetPassword(ctx, req.Email, req.Code, req.Password); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchMunicipality handles POST /municipality for super-admins. An empty
// municipalityId clears the selection.
func (h *Handler) SwitchMunicipality(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := httpjson.Decode(r, &req); err != nil {
		uierrors.BadRequest(w, err)
		return
	}
	if err := h.Sessions.SelectMunicipality(w, r, req.MunicipalityID); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	p, _ := auth.CurrentPrincipal(r)
	p.ActiveMunicipality = req.MunicipalityID
	httpjson.OK(w, newMe(p))
}
