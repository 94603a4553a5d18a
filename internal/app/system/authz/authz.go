// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Allowed reports whether the signed-in principal on r may perform action
// on feature. It returns false when nobody is signed in.
func Allowed(r *http.Request, feature Feature, action Action) bool {
	p, ok := auth.CurrentPrincipal(r)
	if !ok {
		return false
	}
	return Can(p.Role, feature, action)
}

// Require returns middleware that rejects requests whose principal may not
// perform action on feature: 401 when not signed in, 403 otherwise.
func Require(feature Feature, action Action, m *metrics.Metrics, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.CurrentPrincipal(r)
			if !ok {
				httpjson.Error(w, http.StatusUnauthorized, auth.ReasonFromRequest(r))
				return
			}
			if !Can(p.Role, feature, action) {
				m.PermissionDenied(string(feature), string(action))
				logger.Info("permission denied",
					zap.String("uid", p.UID),
					zap.String("role", p.Role),
					zap.String("feature", string(feature)),
					zap.String("action", string(action)))
				httpjson.Error(w, http.StatusForbidden, auth.MsgNotAuthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant rejects requests whose principal has no effective
// municipality, such as a super-admin that has not selected one.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.CurrentPrincipal(r)
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, auth.ReasonFromRequest(r))
			return
		}
		if p.EffectiveMunicipality() == "" {
			httpjson.Error(w, http.StatusConflict, "no municipality selected")
			return
		}
		next.ServeHTTP(w, r)
	})
}
