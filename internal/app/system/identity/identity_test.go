package identity

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	identitystore "github.com/civickey/civickey/internal/app/store/identities"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authutil"
	"github.com/civickey/civickey/internal/app/system/mailer"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

type memCreds struct {
	mu   sync.Mutex
	byID map[string]models.Identity
}

func (m *memCreds) Get(_ context.Context, uid string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byID[uid]
	if !ok {
		return models.Identity{}, identitystore.ErrNotFound
	}
	return id, nil
}

func (m *memCreds) GetByEmail(_ context.Context, email string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.byID {
		if id.EmailCI == email {
			return id, nil
		}
	}
	return models.Identity{}, identitystore.ErrNotFound
}

func (m *memCreds) Create(_ context.Context, uid, email, hash string) (models.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := models.Identity{ID: uid, EmailCI: email, PasswordHash: hash}
	m.byID[uid] = id
	return id, nil
}

func (m *memCreds) SetPasswordHash(_ context.Context, uid, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.byID[uid]
	id.PasswordHash = hash
	id.ResetCodeHash = ""
	id.ResetExpires = nil
	m.byID[uid] = id
	return nil
}

func (m *memCreds) SetReset(_ context.Context, uid, hash string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.byID[uid]
	id.ResetCodeHash = hash
	id.ResetExpires = &expires
	m.byID[uid] = id
	return nil
}

type memAccounts map[string]*models.AdminAccount

func (m memAccounts) FetchAccount(_ context.Context, uid string) (*models.AdminAccount, error) {
	return m[uid], nil
}

func (m memAccounts) SetLastLogin(_ context.Context, uid string, at time.Time) error {
	if a := m[uid]; a != nil {
		a.LastLoginAt = &at
	}
	return nil
}

type captureMail struct{ sent []mailer.Email }

func (c *captureMail) Send(_ context.Context, e mailer.Email) error {
	c.sent = append(c.sent, e)
	return nil
}

func newTestService(t *testing.T) (*Service, memAccounts, *captureMail) {
	t.Helper()
	creds := &memCreds{byID: map[string]models.Identity{}}
	accounts := memAccounts{
		"u-active":   {ID: "u-active", Email: "clerk@hudson.ca", Role: models.RoleEditor, MunicipalityID: "hudson", Active: true},
		"u-disabled": {ID: "u-disabled", Email: "old@hudson.ca", Role: models.RoleEditor, MunicipalityID: "hudson"},
	}
	mail := &captureMail{}
	svc, err := New(creds, accounts, mail, "CivicKey", zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	for uid, email := range map[string]string{
		"u-active":   "clerk@hudson.ca",
		"u-disabled": "old@hudson.ca",
		"u-orphan":   "ghost@hudson.ca",
	} {
		if err := svc.Register(ctx, uid, email, "correct-horse"); err != nil {
			t.Fatalf("Register %s: %v", uid, err)
		}
	}
	return svc, accounts, mail
}

func TestSignIn(t *testing.T) {
	svc, accounts, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"unknown email", "nobody@hudson.ca", "correct-horse", auth.ErrInvalidCredentials},
		{"wrong password", "clerk@hudson.ca", "wrong-horse", auth.ErrInvalidCredentials},
		{"no admin account", "ghost@hudson.ca", "correct-horse", auth.ErrNotAuthorized},
		{"disabled", "old@hudson.ca", "correct-horse", auth.ErrAccountDisabled},
		{"ok", "clerk@hudson.ca", "correct-horse", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := svc.SignIn(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && acct.ID != "u-active" {
				t.Errorf("account = %+v", acct)
			}
		})
	}
	if accounts["u-active"].LastLoginAt == nil {
		t.Error("last login not recorded")
	}
}

func TestPasswordReset(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	if err := svc.RequestReset(ctx, "nobody@hudson.ca"); err != nil {
		t.Fatalf("unknown email should succeed silently: %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("mail sent for unknown email")
	}

	if err := svc.RequestReset(ctx, "clerk@hudson.ca"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	if len(mail.sent) != 1 || mail.sent[0].To != "clerk@hudson.ca" {
		t.Fatalf("sent = %+v", mail.sent)
	}
	code := regexp.MustCompile(`\b\d{6}\b`).FindString(mail.sent[0].TextBody)
	if code == "" {
		t.Fatalf("no code in body %q", mail.sent[0].TextBody)
	}

	if err := svc.ResetPassword(ctx, "clerk@hudson.ca", "not-it", "new-password-1"); !errors.Is(err, ErrInvalidResetCode) {
		t.Errorf("wrong code err = %v", err)
	}
	if err := svc.ResetPassword(ctx, "clerk@hudson.ca", code, "123456"); !errors.Is(err, authutil.ErrPasswordCommon) {
		t.Errorf("common password err = %v", err)
	}
	if err := svc.ResetPassword(ctx, "clerk@hudson.ca", code, "new-password-1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.SignIn(ctx, "clerk@hudson.ca", "new-password-1"); err != nil {
		t.Errorf("sign in with new password: %v", err)
	}
	if err := svc.ResetPassword(ctx, "clerk@hudson.ca", code, "another-one-2"); !errors.Is(err, ErrInvalidResetCode) {
		t.Errorf("reused code err = %v", err)
	}
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	if err := svc.RequestReset(ctx, "clerk@hudson.ca"); err != nil {
		t.Fatalf("RequestReset: %v", err)
	}
	code := regexp.MustCompile(`\b\d{6}\b`).FindString(mail.sent[0].TextBody)

	svc.now = func() time.Time { return start.Add(DefaultResetTTL) }
	if err := svc.ResetPassword(ctx, "clerk@hudson.ca", code, "new-password-1"); !errors.Is(err, ErrInvalidResetCode) {
		t.Errorf("expired code err = %v", err)
	}
}
