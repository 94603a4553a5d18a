// Package identity verifies admin credentials and runs password resets.
// Accounts (role, municipality, active flag) live in the admins collection;
// this package only owns the secrets in identities.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	identitystore "github.com/civickey/civickey/internal/app/store/identities"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/authutil"
	"github.com/civickey/civickey/internal/app/system/mailer"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultResetTTL is how long an emailed reset code stays valid.
const DefaultResetTTL = 30 * time.Minute

// ErrInvalidResetCode covers unknown emails, wrong codes and expired codes
// alike.
var ErrInvalidResetCode = errors.New("invalid or expired reset code")

// Credentials is the identities store.
type Credentials interface {
	Get(ctx context.Context, uid string) (models.Identity, error)
	GetByEmail(ctx context.Context, email string) (models.Identity, error)
	Create(ctx context.Context, uid, email, passwordHash string) (models.Identity, error)
	SetPasswordHash(ctx context.Context, uid, hash string) error
	SetReset(ctx context.Context, uid, codeHash string, expires time.Time) error
}

// Accounts is the admins store.
type Accounts interface {
	FetchAccount(ctx context.Context, uid string) (*models.AdminAccount, error)
	SetLastLogin(ctx context.Context, uid string, at time.Time) error
}

// Service is the identity provider used by the admin session endpoints.
type Service struct {
	creds    Credentials
	accounts Accounts
	mail     mailer.Sender
	siteName string
	resetTTL time.Duration
	now      func() time.Time
	log      *zap.Logger

	// dummyHash is compared against when the email is unknown so both
	// paths cost one bcrypt comparison.
	dummyHash string
}

// New creates the service. mail may be nil, in which case reset codes are
// only logged.
func New(creds Credentials, accounts Accounts, mail mailer.Sender, siteName string, logger *zap.Logger) (*Service, error) {
	if mail == nil {
		mail = mailer.LogSender{Log: logger}
	}
	dummy, err := authutil.HashPassword("civickey-not-a-password")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &Service{
		creds:     creds,
		accounts:  accounts,
		mail:      mail,
		siteName:  siteName,
		resetTTL:  DefaultResetTTL,
		now:       time.Now,
		log:       logger,
		dummyHash: dummy,
	}, nil
}

// SignIn checks email and password and returns the account. Failures map
// to the auth sentinel errors: ErrInvalidCredentials for a bad email or
// password, ErrNotAuthorized when the identity has no admin account, and
// ErrAccountDisabled for a deactivated account.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.AdminAccount, error) {
	id, err := s.creds.GetByEmail(ctx, email)
	if errors.Is(err, identitystore.ErrNotFound) {
		authutil.CheckPassword(password, s.dummyHash)
		return nil, auth.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	if !authutil.CheckPassword(password, id.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}

	acct, err := s.accounts.FetchAccount(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if acct == nil {
		s.log.Warn("identity without admin account", zap.String("uid", id.ID))
		return nil, auth.ErrNotAuthorized
	}
	if !acct.Active {
		return nil, auth.ErrAccountDisabled
	}

	if err := s.accounts.SetLastLogin(ctx, acct.ID, s.now()); err != nil {
		s.log.Warn("record last login failed", zap.String("uid", acct.ID), zap.Error(err))
	}
	return acct, nil
}

// Register creates the credentials for a new account.
func (s *Service) Register(ctx context.Context, uid, email, password string) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.creds.Create(ctx, uid, email, hash)
	return err
}

// SetPassword replaces the password of uid.
func (s *Service) SetPassword(ctx context.Context, uid, password string) error {
	if err := authutil.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.creds.SetPasswordHash(ctx, uid, hash)
}

// RequestReset emails a reset code. Unknown emails succeed silently so the
// endpoint cannot be used to enumerate accounts.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	id, err := s.creds.GetByEmail(ctx, email)
	if errors.Is(err, identitystore.ErrNotFound) {
		s.log.Info("reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	code, err := authutil.NewResetCode()
	if err != nil {
		return fmt.Errorf("generate reset code: %w", err)
	}
	hash, err := authutil.HashPassword(code)
	if err != nil {
		return fmt.Errorf("hash reset code: %w", err)
	}
	if err := s.creds.SetReset(ctx, id.ID, hash, s.now().Add(s.resetTTL)); err != nil {
		return fmt.Errorf("store reset code: %w", err)
	}

	msg := mailer.BuildResetEmail(mailer.ResetEmailData{
		SiteName:  s.siteName,
		Code:      code,
		ExpiresIn: fmt.Sprintf("%d minutes", int(s.resetTTL.Minutes())),
	})
	msg.To = normalize.Email(email)
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password when code matches the pending reset.
// A used code is cleared together with the old password.
func (s *Service) ResetPassword(ctx context.Context, email, code, password string) error {
	id, err := s.creds.GetByEmail(ctx, email)
	if errors.Is(err, identitystore.ErrNotFound) {
		return ErrInvalidResetCode
	}
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}
	if id.ResetExpires == nil || !s.now().Before(*id.ResetExpires) {
		return ErrInvalidResetCode
	}
	if !authutil.CheckPassword(code, id.ResetCodeHash) {
		return ErrInvalidResetCode
	}
	return s.SetPassword(ctx, id.ID, password)
}
