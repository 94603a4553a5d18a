// Package normalize canonicalizes user-entered values before they are stored
// or compared.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses runs of whitespace, so
// "  Papier Recyclé " and "papier recycle" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Hostname lowercases a host and strips any port and trailing dot.
func Hostname(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if strings.HasPrefix(host, "[") {
		// [::1]:3000
		if end := strings.Index(host, "]"); end != -1 {
			return host[1:end]
		}
	}
	if i := strings.LastIndex(host, ":"); i != -1 && strings.Count(host, ":") == 1 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

// Slug lowercases and trims a page or zone identifier.
func Slug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Role maps legacy spellings to the canonical role names.
func Role(s string) string {
	r := strings.ToLower(strings.TrimSpace(s))
	switch r {
	case "superadmin", "super_admin":
		return "super-admin"
	}
	return r
}
