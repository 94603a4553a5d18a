package models

import "strings"

// Supported locales. French is the platform default.
const (
	LocaleEN = "en"
	LocaleFR = "fr"

	DefaultLocale = LocaleFR
)

// Localized is a bilingual text value stored as {en, fr}.
type Localized struct {
	EN string `bson:"en" json:"en"`
	FR string `bson:"fr" json:"fr"`
}

// In returns the text for the given locale, falling back to the other
// language when the requested one is empty.
func (l Localized) In(locale string) string {
	if strings.EqualFold(locale, LocaleEN) {
		if l.EN != "" {
			return l.EN
		}
		return l.FR
	}
	if l.FR != "" {
		return l.FR
	}
	return l.EN
}

// IsZero reports whether both translations are empty.
func (l Localized) IsZero() bool {
	return strings.TrimSpace(l.EN) == "" && strings.TrimSpace(l.FR) == ""
}

// IsSupportedLocale reports whether s is exactly one of the platform locales.
func IsSupportedLocale(s string) bool {
	return s == LocaleEN || s == LocaleFR
}
