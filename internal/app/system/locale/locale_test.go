package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"cookie en wins over french header", "en", "fr-CA,fr;q=0.9", "en"},
		{"cookie fr wins over english header", "fr", "en-US,en;q=0.9", "fr"},
		{"invalid cookie ignored", "EN", "fr-CA", "fr"},
		{"unknown cookie ignored", "de", "en-GB", "en"},
		{"english header", "", "en-US,en;q=0.9", "en"},
		{"english header uppercase", "", "EN", "en"},
		{"english primary with quality", "", "en;q=0.8, fr", "en"},
		{"english not primary", "", "fr-CA, en;q=0.5", "fr"},
		{"other language", "", "es-MX", "fr"},
		{"no input", "", "", "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.cookie, tt.header); got != tt.want {
				t.Errorf("Resolve(%q, %q) = %q, want %q", tt.cookie, tt.header, got, tt.want)
			}
		})
	}
}

func TestMiddleware_SetsContext(t *testing.T) {
	var got string
	h := Middleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "en"})
	req.Header.Set("Accept-Language", "fr-CA")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "en" {
		t.Errorf("locale in context = %q, want en", got)
	}
}

func TestFromContext_Default(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := FromContext(req.Context()); got != "fr" {
		t.Errorf("FromContext without middleware = %q, want fr", got)
	}
}
