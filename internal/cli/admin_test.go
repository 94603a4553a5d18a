package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/client/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type manualTimer struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// manualClock fires timers only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) idle.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.at.After(c.now) {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type fakeAdminAPI struct {
	mu         sync.Mutex
	activity   int
	logouts    int
	me         int
	switchedTo []string
	activityFn func() error
}

func (f *fakeAdminAPI) Login(_ context.Context, email, password string) (apiclient.Admin, error) {
	if password != "secret" {
		return apiclient.Admin{}, &apiclient.StatusError{Status: 401, Message: "Invalid email or password."}
	}
	return apiclient.Admin{Email: email, Role: "superadmin"}, nil
}

func (f *fakeAdminAPI) Me(context.Context) (apiclient.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.me++
	return apiclient.Admin{Email: "admin@civickey.ca", Role: "superadmin"}, nil
}

func (f *fakeAdminAPI) SwitchMunicipality(_ context.Context, id string) (apiclient.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.switchedTo = append(f.switchedTo, id)
	return apiclient.Admin{Email: "admin@civickey.ca", Role: "superadmin", EffectiveMunicipality: id}, nil
}

func (f *fakeAdminAPI) Activity(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity++
	if f.activityFn != nil {
		return false, f.activityFn()
	}
	return true, nil
}

func (f *fakeAdminAPI) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return nil
}

// stepReader returns one line per Read and calls before(i) ahead of line i.
// bufio.Scanner only reads again once the previous line is consumed.
type stepReader struct {
	lines  []string
	i      int
	before func(i int)
}

func (r *stepReader) Read(p []byte) (int, error) {
	if r.i >= len(r.lines) {
		return 0, io.EOF
	}
	if r.before != nil {
		r.before(r.i)
	}
	n := copy(p, r.lines[r.i]+"\n")
	r.i++
	return n, nil
}

func newShell(api *fakeAdminAPI) (*AdminShell, *manualClock) {
	clk := &manualClock{now: time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC)}
	return NewAdminShell(api, zap.NewNop(), idle.WithClock(clk), idle.WithThreshold(15*time.Minute)), clk
}

func TestAdminShell_CommandsRecordActivity(t *testing.T) {
	api := &fakeAdminAPI{}
	sh, clk := newShell(api)
	in := &stepReader{
		lines:  []string{"me", "", "switch hudson", "quit"},
		before: func(int) { clk.Advance(2 * time.Second) },
	}
	var out bytes.Buffer

	err := sh.Run(context.Background(), "admin@civickey.ca", "secret", in, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Signed in as admin@civickey.ca (superadmin).")
	assert.Contains(t, out.String(), "admin@civickey.ca\tsuperadmin\thudson")
	assert.Equal(t, 1, api.me)
	assert.Equal(t, []string{"hudson"}, api.switchedTo)
	assert.Equal(t, 3, api.activity, "blank lines are not activity")
	assert.Equal(t, 1, api.logouts)
}

func TestAdminShell_ThrottledActivityNotSent(t *testing.T) {
	api := &fakeAdminAPI{}
	sh, _ := newShell(api)

	err := sh.Run(context.Background(), "admin@civickey.ca", "secret", strings.NewReader("me\nme\nme\n"), io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, api.me)
	assert.Zero(t, api.activity, "the clock never moved past the throttle")
	assert.Equal(t, 1, api.logouts, "end of input signs out")
}

func TestAdminShell_IdleSignsOut(t *testing.T) {
	api := &fakeAdminAPI{}
	sh, clk := newShell(api)
	in := &stepReader{
		lines: []string{"me", "me"},
		before: func(i int) {
			if i == 1 {
				clk.Advance(16 * time.Minute)
			}
		},
	}

	err := sh.Run(context.Background(), "admin@civickey.ca", "secret", in, io.Discard)
	assert.ErrorIs(t, err, ErrIdleSignedOut)
	assert.Equal(t, 1, api.me, "no command runs after expiry")
	assert.Equal(t, 1, api.logouts, "the guard signs out exactly once")
}

func TestAdminShell_ServerEndedSession(t *testing.T) {
	api := &fakeAdminAPI{activityFn: func() error { return apiclient.ErrSignedOut }}
	sh, clk := newShell(api)
	in := &stepReader{lines: []string{"me"}, before: func(int) { clk.Advance(time.Minute) }}

	err := sh.Run(context.Background(), "admin@civickey.ca", "secret", in, io.Discard)
	assert.ErrorIs(t, err, apiclient.ErrSignedOut)
	assert.Zero(t, api.me)
	assert.Equal(t, 1, api.logouts, "local session dropped")
}

func TestAdminShell_LoginRequired(t *testing.T) {
	api := &fakeAdminAPI{}
	sh, _ := newShell(api)

	err := sh.Run(context.Background(), "admin@civickey.ca", "", strings.NewReader("me\n"), io.Discard)
	assert.Error(t, err)

	err = sh.Run(context.Background(), "admin@civickey.ca", "wrong", strings.NewReader("me\n"), io.Discard)
	var se *apiclient.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Zero(t, api.me)
	assert.Zero(t, api.logouts)
}

func TestApp_AdminShellUsesConfiguredTimeout(t *testing.T) {
	app := &App{
		Config: &Config{Admin: AdminConfig{IdleTimeout: 5 * time.Minute}},
		Log:    zap.NewNop(),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()
	var err error
	app.API, err = apiclient.New(srv.URL)
	require.NoError(t, err)

	clk := &manualClock{now: time.Date(2026, 11, 10, 9, 0, 0, 0, time.UTC)}
	sh := app.AdminShell(idle.WithClock(clk))
	sh.guard.Start()
	defer sh.guard.Stop()

	clk.Advance(4 * time.Minute)
	assert.Equal(t, idle.StateActive, sh.guard.State())
	clk.Advance(time.Minute)
	assert.Equal(t, idle.StateExpired, sh.guard.State())
}
