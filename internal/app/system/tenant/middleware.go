package tenant

import (
	"context"
	"net/http"

	"github.com/civickey/civickey/internal/app/system/locale"
	"github.com/civickey/civickey/internal/app/system/timeouts"
)

// Middleware resolves the tenant of each request.
//
// When a tenant is found its Info is put in the context, and in path mode the
// municipality segment is stripped from the URL so downstream routes see
// "/fr/events" for "/saint-lazare/fr/events". Path-mode requests without a
// locale segment are redirected to the same path with the request locale
// inserted. Requests with no tenant pass through unchanged.
func Middleware(res *Resolver, localeCookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			out := res.Resolve(ctx, r.Host, r.URL.Path)
			cancel()

			if !out.Found() {
				next.ServeHTTP(w, r)
				return
			}

			if out.LocaleMissing {
				target := RedirectPath(r.URL.Path, locale.FromRequest(r, localeCookie))
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			r = r.WithContext(WithInfo(r.Context(), &Info{
				MunicipalityID: out.MunicipalityID,
				Mode:           out.Mode,
				Locale:         out.Locale,
			}))
			if out.Rewrite != "" {
				u := *r.URL
				u.Path = out.Rewrite
				u.RawPath = ""
				r.URL = &u
			}
			next.ServeHTTP(w, r)
		})
	}
}
