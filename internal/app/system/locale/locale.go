// Package locale picks the response language for a request.
package locale

import (
	"context"
	"net/http"
	"strings"

	"github.com/civickey/civickey/internal/domain/models"
)

// DefaultCookieName is the cookie that carries an explicit language choice.
const DefaultCookieName = "civickey-locale"

// Resolve returns "en" or "fr".
//
// An explicit cookie value of exactly "en" or "fr" wins. Otherwise the
// primary Accept-Language tag decides: anything starting with "en" is
// English. Everything else falls back to French.
func Resolve(cookieLocale, acceptLanguage string) string {
	if models.IsSupportedLocale(cookieLocale) {
		return cookieLocale
	}
	if strings.HasPrefix(primaryTag(acceptLanguage), models.LocaleEN) {
		return models.LocaleEN
	}
	return models.DefaultLocale
}

// primaryTag returns the first language tag of an Accept-Language header,
// lowercased and without its quality value.
func primaryTag(header string) string {
	first := header
	if i := strings.IndexByte(first, ','); i != -1 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i != -1 {
		first = first[:i]
	}
	return strings.ToLower(strings.TrimSpace(first))
}

type ctxKey string

const localeKey ctxKey = "locale"

// FromRequest resolves the locale from the request's cookie and header.
func FromRequest(r *http.Request, cookieName string) string {
	var cookieVal string
	if c, err := r.Cookie(cookieName); err == nil {
		cookieVal = c.Value
	}
	return Resolve(cookieVal, r.Header.Get("Accept-Language"))
}

// Middleware stores the resolved locale in the request context.
func Middleware(cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := FromRequest(r, cookieName)
			next.ServeHTTP(w, r.WithContext(WithLocale(r.Context(), loc)))
		})
	}
}

// WithLocale returns ctx carrying loc.
func WithLocale(ctx context.Context, loc string) context.Context {
	return context.WithValue(ctx, localeKey, loc)
}

// FromContext returns the locale stored by Middleware, or the default.
func FromContext(ctx context.Context) string {
	if loc, ok := ctx.Value(localeKey).(string); ok && loc != "" {
		return loc
	}
	return models.DefaultLocale
}
