package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Staff returns a principal with role bound to municipalityID.
func Staff(role, municipalityID string) *auth.Principal {
	return &auth.Principal{
		UID:                  primitive.NewObjectID().Hex(),
		Email:                role + "@" + municipalityID + ".test",
		Name:                 "Test " + role,
		Role:                 role,
		AssignedMunicipality: municipalityID,
	}
}

// SuperAdmin returns a super-admin principal with activeMunicipality
// selected (may be empty).
func SuperAdmin(activeMunicipality string) *auth.Principal {
	return &auth.Principal{
		UID:                primitive.NewObjectID().Hex(),
		Email:              "root@civickey.test",
		Name:               "Test super-admin",
		Role:               models.RoleSuperAdmin,
		ActiveMunicipality: activeMunicipality,
	}
}

// WithPrincipal attaches p to the request, bypassing the session middleware.
func WithPrincipal(r *http.Request, p *auth.Principal) *http.Request {
	return auth.WithTestPrincipal(r, p)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest encodes body as JSON into a new request.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// DecodeJSON decodes a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
