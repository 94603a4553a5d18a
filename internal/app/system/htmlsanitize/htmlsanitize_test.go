package htmlsanitize_test

import (
	"html/template"
	"strings"
	"testing"

	"github.com/civickey/civickey/internal/app/system/htmlsanitize"
	"github.com/civickey/civickey/internal/domain/models"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Collecte des encombrants", "Collecte des encombrants"},
		{"formatting", "<p><strong>Important</strong> and <em>note</em></p>", "<p><strong>Important</strong> and <em>note</em></p>"},
		{"script removed", "<p>Hello</p><script>alert('xss')</script>", "<p>Hello</p>"},
		{"lists", "<ul><li>Paper</li><li>Glass</li></ul>", "<ul><li>Paper</li><li>Glass</li></ul>"},
		{"headings", "<h2>Hours</h2>", "<h2>Hours</h2>"},
		{"code", "<pre><code>x</code></pre>", "<pre><code>x</code></pre>"},
		{"table", "<table><thead><tr><th>Day</th></tr></thead><tbody><tr><td>Mon</td></tr></tbody></table>",
			"<table><thead><tr><th>Day</th></tr></thead><tbody><tr><td>Mon</td></tr></tbody></table>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_StripsDangerousContent(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		mustNot string
	}{
		{"onclick", `<button onclick="alert(1)">Click</button>`, "onclick"},
		{"javascript href", `<a href="javascript:alert(1)">x</a>`, "javascript:"},
		{"iframe", `<p>Content</p><iframe src="https://evil.example"></iframe>`, "iframe"},
		{"style tag", `<style>body{color:red}</style><p>Text</p>`, "<style>"},
		{"onerror", `<img src="x" onerror="alert(1)">`, "onerror"},
		{"data url", `<img src="data:text/html,<script>alert(1)</script>">`, "data:text/html"},
		{"form", `<form action="/x"><input type="text"></form>`, "<input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			if strings.Contains(got, tt.mustNot) {
				t.Errorf("Sanitize(%q) = %q, still contains %q", tt.input, got, tt.mustNot)
			}
		})
	}
}

func TestSanitize_KeepsSafeMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"link", `<a href="https://saint-lazare.ca">Site</a>`, []string{"https://saint-lazare.ca"}},
		{"image", `<img src="https://cdn.example/photo.jpg" alt="Hall">`, []string{"src=", "alt="}},
		{"table attrs", `<table><tr><td colspan="2" rowspan="2">Cell</td></tr></table>`, []string{`colspan="2"`, `rowspan="2"`}},
		{"table style", `<table style="width:100%"><tr><td style="text-align:center">Cell</td></tr></table>`, []string{"style="}},
		{"breaks", "Line 1<br>Line 2", []string{"<br"}},
		{"rule", "<p>a</p><hr><p>b</p>", []string{"<hr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := htmlsanitize.Sanitize(tt.input)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Sanitize(%q) = %q, missing %q", tt.input, got, w)
				}
			}
		})
	}
}

func TestSanitizeLocalized(t *testing.T) {
	got := htmlsanitize.SanitizeLocalized(models.Localized{
		EN: "<p>Hi</p><script>x()</script>",
		FR: "<p>Salut</p><script>x()</script>",
	})
	if got.EN != "<p>Hi</p>" || got.FR != "<p>Salut</p>" {
		t.Errorf("SanitizeLocalized = %+v", got)
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Hello", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlainTextToHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Hello", "<p>Hello</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
		{"A & B", "<p>A &amp; B</p>"},
		{"<b>x</b>", "<p>&lt;b&gt;x&lt;/b&gt;</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PlainTextToHTML(tt.in); got != tt.want {
			t.Errorf("PlainTextToHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrepareForDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want template.HTML
	}{
		{"", ""},
		{"Hello", "<p>Hello</p>"},
		{"<p>Hello</p>", "<p>Hello</p>"},
		{"<p>Hello</p><script>x()</script>", "<p>Hello</p>"},
		{"Line 1\nLine 2", "<p>Line 1<br>Line 2</p>"},
	}
	for _, tt := range tests {
		if got := htmlsanitize.PrepareForDisplay(tt.in); got != tt.want {
			t.Errorf("PrepareForDisplay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
