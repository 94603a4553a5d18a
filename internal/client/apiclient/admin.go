package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrSignedOut is returned when the server no longer accepts the session.
var ErrSignedOut = eris.New("signed out")

// Admin is the signed-in back-office user.
type Admin struct {
	UID                   string `json:"uid"`
	Email                 string `json:"email"`
	Name                  string `json:"name"`
	Role                  string `json:"role"`
	AssignedMunicipality  string `json:"assignedMunicipality,omitempty"`
	ActiveMunicipality    string `json:"activeMunicipality,omitempty"`
	EffectiveMunicipality string `json:"effectiveMunicipality,omitempty"`
}

// AdminSession talks to /admin/session with its own cookie jar. It is safe
// for concurrent use.
type AdminSession struct {
	base string

	mu   sync.Mutex
	http *http.Client
}

// AdminSession returns a signed-out session against the same server.
func (c *Client) AdminSession() *AdminSession {
	hc := *c.http
	hc.Jar = newJar()
	return &AdminSession{base: c.base, http: &hc}
}

func newJar() http.CookieJar {
	jar, _ := cookiejar.New(nil) // only fails on a bad PublicSuffixList
	return jar
}

// Login signs in and returns the admin.
func (s *AdminSession) Login(ctx context.Context, email, password string) (Admin, error) {
	var a Admin
	err := s.post(ctx, "/login", map[string]string{"email": email, "password": password}, &a)
	return a, err
}

// Me returns the signed-in admin.
func (s *AdminSession) Me(ctx context.Context) (Admin, error) {
	var a Admin
	err := s.do(ctx, http.MethodGet, "/me", nil, &a)
	return a, err
}

// SwitchMunicipality selects the municipality a super-admin works on. An
// empty id clears the selection.
func (s *AdminSession) SwitchMunicipality(ctx context.Context, id string) (Admin, error) {
	var a Admin
	err := s.post(ctx, "/municipality", map[string]string{"municipalityId": id}, &a)
	return a, err
}

// Activity reports user activity. recorded is false when the server
// throttled it.
func (s *AdminSession) Activity(ctx context.Context) (recorded bool, err error) {
	var out struct {
		Recorded bool `json:"recorded"`
	}
	err = s.post(ctx, "/activity", nil, &out)
	return out.Recorded, err
}

// Logout ends the session on the server and drops the local cookie. The
// cookie is dropped even when the server call fails.
func (s *AdminSession) Logout(ctx context.Context) error {
	err := s.post(ctx, "/logout", nil, nil)
	s.mu.Lock()
	hc := *s.http
	hc.Jar = newJar()
	s.http = &hc
	s.mu.Unlock()
	return err
}

func (s *AdminSession) post(ctx context.Context, path string, in, out any) error {
	return s.do(ctx, http.MethodPost, path, in, out)
}

func (s *AdminSession) do(ctx context.Context, method, path string, in, out any) error {
	u := s.base + "/admin/session" + path
	var body bytes.Buffer
	if in != nil {
		if err := json.NewEncoder(&body).Encode(in); err != nil {
			return eris.Wrap(err, "encode request")
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &body)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.mu.Lock()
	hc := s.http
	s.mu.Unlock()
	resp, err := hc.Do(req)
	if err != nil {
		return eris.Wrapf(err, "%s %s", method, u)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Status == http.StatusUnauthorized && path != "/login" {
			return eris.Wrapf(ErrSignedOut, "%s %s: %s", method, u, se.Message)
		}
		return eris.Wrapf(err, "%s %s", method, u)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "decode %s", u)
	}
	return nil
}
