package tenant

import (
	"context"
	"net/http"

	"github.com/civickey/civickey/internal/app/system/httpjson"
)

type ctxKey string

const tenantKey ctxKey = "tenant"

// Info holds the tenant of the current request.
type Info struct {
	MunicipalityID string
	Mode           Mode
	Locale         string // path-mode locale segment, if any
}

// FromRequest returns the tenant info from the request context.
// Returns nil if no tenant was resolved.
func FromRequest(r *http.Request) *Info {
	return FromContext(r.Context())
}

// FromContext returns the tenant info from the context.
// Returns nil if no tenant was resolved.
func FromContext(ctx context.Context) *Info {
	if t, ok := ctx.Value(tenantKey).(*Info); ok {
		return t
	}
	return nil
}

// IDFromRequest returns the resolved municipality ID or "".
func IDFromRequest(r *http.Request) string {
	if t := FromRequest(r); t != nil {
		return t.MunicipalityID
	}
	return ""
}

// WithInfo returns ctx carrying info.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, tenantKey, info)
}

// WithTestTenant returns a request scoped to municipalityID, for tests.
func WithTestTenant(r *http.Request, municipalityID string) *http.Request {
	return r.WithContext(WithInfo(r.Context(), &Info{MunicipalityID: municipalityID, Mode: ModeSubdomain}))
}

// RequireTenant responds 404 when no tenant was resolved.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IDFromRequest(r) == "" {
			httpjson.Error(w, http.StatusNotFound, "municipality not found")
			return
		}
		next.ServeHTTP(w, r)
	})
}
