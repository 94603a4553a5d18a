package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

type fakeAccounts struct {
	accounts map[string]*models.AdminAccount
	err      error
	calls    int
}

func (f *fakeAccounts) FetchAccount(_ context.Context, uid string) (*models.AdminAccount, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[uid], nil
}

type fakeMunicipalities map[string]bool

func (f fakeMunicipalities) IsActiveMunicipality(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

type testEnv struct {
	sm       *SessionManager
	accounts *fakeAccounts
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sm, err := NewSessionManager("test-session-key-must-be-32-chars-long", "", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	env := &testEnv{
		sm: sm,
		accounts: &fakeAccounts{accounts: map[string]*models.AdminAccount{
			"u-editor": {ID: "u-editor", Role: models.RoleEditor, MunicipalityID: "saint-lazare", Active: true},
			"u-super":  {ID: "u-super", Role: models.RoleSuperAdmin, Active: true},
			"u-off":    {ID: "u-off", Role: models.RoleAdmin, MunicipalityID: "saint-lazare", Active: false},
		}},
		now: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	sm.now = func() time.Time { return env.now }
	sm.SetAccountFetcher(env.accounts)
	sm.SetMunicipalityChecker(fakeMunicipalities{"saint-lazare": true, "hudson": true})
	return env
}

// signIn returns the session cookie for uid.
func (e *testEnv) signIn(t *testing.T, uid string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := e.sm.SignIn(rec, httptest.NewRequest("POST", "/", nil), uid); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	return lastCookie(t, rec, e.sm.name)
}

func lastCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	if found == nil {
		t.Fatalf("no %s cookie set", name)
	}
	return found
}

// load runs LoadPrincipal and returns the principal seen by the handler.
func (e *testEnv) load(cookie *http.Cookie) (*Principal, *httptest.ResponseRecorder, string) {
	var p *Principal
	var reason string
	h := e.sm.LoadPrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ = CurrentPrincipal(r)
		reason = ReasonFromRequest(r)
	}))
	req := httptest.NewRequest("GET", "/admin/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return p, rec, reason
}

func TestLoadPrincipal_NoSession(t *testing.T) {
	env := newTestEnv(t)
	p, _, _ := env.load(nil)
	if p != nil {
		t.Errorf("principal = %+v, want none", p)
	}
	if env.accounts.calls != 0 {
		t.Errorf("account fetched %d times without a session", env.accounts.calls)
	}
}

func TestLoadPrincipal_UsesStoredRecord(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-editor")

	p, _, _ := env.load(cookie)
	if p == nil {
		t.Fatal("expected principal")
	}
	if p.Role != models.RoleEditor || p.EffectiveMunicipality() != "saint-lazare" {
		t.Errorf("principal = %+v", p)
	}

	// a role change on the record takes effect on the next request
	env.accounts.accounts["u-editor"].Role = models.RoleViewer
	p, _, _ = env.load(cookie)
	if p == nil || p.Role != models.RoleViewer {
		t.Errorf("principal after role change = %+v, want viewer", p)
	}
}

func TestLoadPrincipal_IdleExpiry(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-editor")

	env.now = env.now.Add(15*time.Minute - time.Second)
	if p, _, _ := env.load(cookie); p == nil {
		t.Fatal("session should still be valid just before the threshold")
	}

	env.now = env.now.Add(time.Second)
	p, _, reason := env.load(cookie)
	if p != nil {
		t.Error("session should expire at the threshold")
	}
	if reason != MsgSessionExpired {
		t.Errorf("reason = %q, want %q", reason, MsgSessionExpired)
	}
}

func TestRecordActivity_ExtendsSession(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-editor")

	env.now = env.now.Add(10 * time.Minute)
	req := httptest.NewRequest("POST", "/admin/session/activity", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	recorded, err := env.sm.RecordActivity(rec, req)
	if err != nil || !recorded {
		t.Fatalf("RecordActivity = %v, %v", recorded, err)
	}
	cookie = lastCookie(t, rec, env.sm.name)

	env.now = env.now.Add(10 * time.Minute)
	if p, _, _ := env.load(cookie); p == nil {
		t.Error("session should be valid 10 minutes after recorded activity")
	}
}

func TestLoadPrincipal_DeactivatedSignedOut(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-off")

	p, rec, reason := env.load(cookie)
	if p != nil {
		t.Error("deactivated account must not get a principal")
	}
	if reason != MsgAccountDisabled {
		t.Errorf("reason = %q, want %q", reason, MsgAccountDisabled)
	}
	cleared := lastCookie(t, rec, env.sm.name)
	if cleared.MaxAge >= 0 {
		t.Errorf("cookie MaxAge = %d, want negative (cleared)", cleared.MaxAge)
	}
}

func TestLoadPrincipal_FetchErrorDoesNotAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-editor")
	env.accounts.err = errors.New("db down")

	if p, _, _ := env.load(cookie); p != nil {
		t.Error("principal should not be set when the account cannot be read")
	}
}

func TestSelectMunicipality(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		uid     string
		target  string
		wantErr error
	}{
		{"super-admin selects active", "u-super", "hudson", nil},
		{"super-admin unknown target", "u-super", "atlantis", ErrUnknownMunicipality},
		{"editor cannot switch", "u-editor", "hudson", ErrNotAuthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie := env.signIn(t, tt.uid)
			req := httptest.NewRequest("POST", "/admin/session/municipality", nil)
			req.AddCookie(cookie)
			rec := httptest.NewRecorder()
			err := env.sm.SelectMunicipality(rec, req, tt.target)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("SelectMunicipality() err = %v, want %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			p, _, _ := env.load(lastCookie(t, rec, env.sm.name))
			if p == nil || p.EffectiveMunicipality() != tt.target {
				t.Errorf("principal = %+v, want active %q", p, tt.target)
			}
		})
	}
}

func TestSelectMunicipality_RevalidatesRole(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, "u-super")

	// demoted on the record: the switch must be refused
	env.accounts.accounts["u-super"].Role = models.RoleAdmin
	req := httptest.NewRequest("POST", "/admin/session/municipality", nil)
	req.AddCookie(cookie)
	if err := env.sm.SelectMunicipality(httptest.NewRecorder(), req, "hudson"); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestEffectiveMunicipality(t *testing.T) {
	editor := &Principal{Role: models.RoleEditor, AssignedMunicipality: "a", ActiveMunicipality: "b"}
	if got := editor.EffectiveMunicipality(); got != "a" {
		t.Errorf("editor effective = %q, want assignment", got)
	}
	super := &Principal{Role: models.RoleSuperAdmin, ActiveMunicipality: "b"}
	if got := super.EffectiveMunicipality(); got != "b" {
		t.Errorf("super-admin effective = %q, want selection", got)
	}
}

func TestRequireSignedIn(t *testing.T) {
	h := RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/admin/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), MsgNotAuthorized) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	req := WithTestPrincipal(httptest.NewRequest("GET", "/admin/me", nil), &Principal{UID: "u"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestMessage_ClosedSet(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidCredentials, MsgInvalidCredentials},
		{ErrAccountDisabled, MsgAccountDisabled},
		{ErrSessionExpired, MsgSessionExpired},
		{ErrNotAuthorized, MsgNotAuthorized},
		{errors.New("mongo: connection refused"), MsgNotAuthorized},
	}
	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
