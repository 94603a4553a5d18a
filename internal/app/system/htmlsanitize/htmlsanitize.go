// Package htmlsanitize cleans admin-authored HTML (custom page bodies)
// before it is stored or served to the public website.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/civickey/civickey/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
	p.AllowStyles("width", "text-align", "vertical-align").OnElements("table", "tr", "th", "td")
	p.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	return p
}

// Sanitize strips scripts, event handlers, unsafe URLs and any element not
// in the page-body allowlist.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeLocalized sanitizes both translations.
func SanitizeLocalized(l models.Localized) models.Localized {
	return models.Localized{EN: Sanitize(l.EN), FR: Sanitize(l.FR)}
}

// SanitizeToHTML is Sanitize for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes s and wraps it in a paragraph, turning newlines
// into <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

// PrepareForDisplay accepts either plain text or HTML and returns safe HTML.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
