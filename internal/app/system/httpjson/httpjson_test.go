package httpjson

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusForbidden, "not authorized")

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"not authorized"}` {
		t.Errorf("body = %s", got)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a","extra":1}`))
	if err := Decode(r, &v); err == nil {
		t.Error("expected error for unknown field")
	}

	r = httptest.NewRequest("POST", "/", strings.NewReader(`{"name":"a"}`))
	if err := Decode(r, &v); err != nil || v.Name != "a" {
		t.Errorf("Decode() = %v, name %q", err, v.Name)
	}
}
