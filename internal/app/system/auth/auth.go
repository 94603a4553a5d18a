package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	DefaultSessionName = "civickey-admin"

	uidKey                = "uid"
	lastActivityKey       = "last_activity"
	activeMunicipalityKey = "active_municipality"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Principal                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is the signed-in admin for the current request. Role and
// AssignedMunicipality always come from the stored account record.
// ActiveMunicipality is the super-admin's current selection and is empty for
// everyone else.
type Principal struct {
	UID                  string
	Email                string
	Name                 string
	Role                 string
	AssignedMunicipality string
	ActiveMunicipality   string
}

// IsSuperAdmin reports whether the principal is a super-admin.
func (p *Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// EffectiveMunicipality is the municipality admin operations act on: the
// immutable assignment for regular admins, the active selection for
// super-admins.
func (p *Principal) EffectiveMunicipality() string {
	if p.IsSuperAdmin() {
		return p.ActiveMunicipality
	}
	return p.AssignedMunicipality
}

type ctxKey string

const (
	principalKey ctxKey = "principal"
	reasonKey    ctxKey = "authReason"
)

// CurrentPrincipal returns the principal & "found?" flag.
func CurrentPrincipal(r *http.Request) (*Principal, bool) {
	p, ok := r.Context().Value(principalKey).(*Principal)
	return p, ok
}

// ReasonFromRequest returns the user-facing message explaining why the
// request has no principal.
func ReasonFromRequest(r *http.Request) string {
	if err, ok := r.Context().Value(reasonKey).(error); ok {
		return Message(err)
	}
	return MsgNotAuthorized
}

// WithTestPrincipal returns a request carrying p, for tests.
func WithTestPrincipal(r *http.Request, p *Principal) *http.Request {
	return withPrincipal(r, p)
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

func withReason(r *http.Request, err error) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), reasonKey, err))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// AccountFetcher loads the trusted account record for a uid on each
// request. It returns nil, nil when no account exists.
type AccountFetcher interface {
	FetchAccount(ctx context.Context, uid string) (*models.AdminAccount, error)
}

// MunicipalityChecker reports whether a municipality exists and is active.
type MunicipalityChecker interface {
	IsActiveMunicipality(ctx context.Context, id string) (bool, error)
}

// SessionManager owns the admin session cookie.
type SessionManager struct {
	store          *sessions.CookieStore
	name           string
	accounts       AccountFetcher
	municipalities MunicipalityChecker
	idleTimeout    time.Duration
	now            func() time.Time
	log            *zap.Logger
}

// NewSessionManager creates a session manager. The `secure` flag controls
// whether cookies are marked Secure and which SameSite mode is used.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = DefaultSessionName
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteStrictMode
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:       store,
		name:        name,
		idleTimeout: idle.DefaultThreshold,
		now:         time.Now,
		log:         logger,
	}, nil
}

// SetAccountFetcher sets the source of fresh account records.
func (m *SessionManager) SetAccountFetcher(f AccountFetcher) { m.accounts = f }

// SetMunicipalityChecker sets the validator for super-admin selections.
func (m *SessionManager) SetMunicipalityChecker(c MunicipalityChecker) { m.municipalities = c }

// SetIdleTimeout overrides the idle threshold.
func (m *SessionManager) SetIdleTimeout(d time.Duration) {
	if d > 0 {
		m.idleTimeout = d
	}
}

// SignIn starts a fresh session for uid.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, uid string) error {
	sess, _ := m.store.Get(r, m.name)
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Values[uidKey] = uid
	sess.Values[lastActivityKey] = m.now().UnixMilli()
	sess.Options.MaxAge = 0
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	return m.clear(w, r, sess)
}

func (m *SessionManager) clear(w http.ResponseWriter, r *http.Request, sess *sessions.Session) error {
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// RecordActivity stamps the session with the current time. Calls closer
// together than idle.DefaultThrottle are ignored. It reports whether the
// activity was recorded.
func (m *SessionManager) RecordActivity(w http.ResponseWriter, r *http.Request) (bool, error) {
	sess, _ := m.store.Get(r, m.name)
	if getString(sess, uidKey) == "" {
		return false, ErrSessionExpired
	}
	now := m.now()
	last := lastActivity(sess)
	if idle.Expired(last, now, m.idleTimeout) {
		_ = m.clear(w, r, sess)
		return false, ErrSessionExpired
	}
	if !idle.ShouldRecord(last, now, idle.DefaultThrottle) {
		return false, nil
	}
	sess.Values[lastActivityKey] = now.UnixMilli()
	return true, sess.Save(r, w)
}

// SelectMunicipality switches the super-admin's active municipality. The
// role is re-read from the account record rather than the request context,
// and the target must be an active municipality. An empty id clears the
// selection.
func (m *SessionManager) SelectMunicipality(w http.ResponseWriter, r *http.Request, id string) error {
	sess, _ := m.store.Get(r, m.name)
	uid := getString(sess, uidKey)
	if uid == "" || m.accounts == nil {
		return ErrNotAuthorized
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := m.accounts.FetchAccount(ctx, uid)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}
	if acct == nil || !acct.Active || !acct.IsSuperAdmin() {
		m.log.Warn("municipality switch refused",
			zap.String("uid", uid),
			zap.String("municipality_id", id))
		return ErrNotAuthorized
	}

	if id != "" {
		if m.municipalities == nil {
			return ErrNotAuthorized
		}
		ok, err := m.municipalities.IsActiveMunicipality(ctx, id)
		if err != nil {
			return fmt.Errorf("check municipality: %w", err)
		}
		if !ok {
			return ErrUnknownMunicipality
		}
	}

	sess.Values[activeMunicipalityKey] = id
	return sess.Save(r, w)
}

// LoadPrincipal injects the principal into the request context when the
// session is valid. Expired sessions are cleared. Sessions whose account is
// missing, inactive or unreadable are signed out.
func (m *SessionManager) LoadPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)
		uid := getString(sess, uidKey)
		if uid == "" || m.accounts == nil {
			next.ServeHTTP(w, r)
			return
		}

		if idle.Expired(lastActivity(sess), m.now(), m.idleTimeout) {
			m.log.Info("admin session expired", zap.String("uid", uid))
			_ = m.clear(w, r, sess)
			next.ServeHTTP(w, withReason(r, ErrSessionExpired))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		acct, err := m.accounts.FetchAccount(ctx, uid)
		cancel()
		if err != nil {
			m.log.Error("fetch admin account failed", zap.String("uid", uid), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}
		if acct == nil {
			m.log.Warn("session for unknown account, signing out", zap.String("uid", uid))
			_ = m.clear(w, r, sess)
			next.ServeHTTP(w, withReason(r, ErrNotAuthorized))
			return
		}
		if !acct.Active {
			m.log.Info("deactivated admin signed out", zap.String("uid", uid))
			_ = m.clear(w, r, sess)
			next.ServeHTTP(w, withReason(r, ErrAccountDisabled))
			return
		}

		p := &Principal{
			UID:                  acct.ID,
			Email:                acct.Email,
			Name:                 acct.Name,
			Role:                 acct.Role,
			AssignedMunicipality: acct.MunicipalityID,
		}
		if p.IsSuperAdmin() {
			p.AssignedMunicipality = ""
			p.ActiveMunicipality = m.validSelection(r.Context(), getString(sess, activeMunicipalityKey))
		}
		next.ServeHTTP(w, withPrincipal(r, p))
	})
}

// validSelection drops a stored selection that no longer names an active
// municipality.
func (m *SessionManager) validSelection(ctx context.Context, id string) string {
	if id == "" || m.municipalities == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	ok, err := m.municipalities.IsActiveMunicipality(ctx, id)
	if err != nil || !ok {
		return ""
	}
	return id
}

// RequireSignedIn rejects requests without a principal with 401 and the
// reason as a JSON error.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentPrincipal(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, ReasonFromRequest(r))
	})
}

// RequireSuperAdmin rejects everyone except super-admins.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := CurrentPrincipal(r)
		if !ok {
			httpjson.Error(w, http.StatusUnauthorized, ReasonFromRequest(r))
			return
		}
		if !p.IsSuperAdmin() {
			httpjson.Error(w, http.StatusForbidden, MsgNotAuthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// helpers

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func lastActivity(s *sessions.Session) time.Time {
	if v, ok := s.Values[lastActivityKey].(int64); ok {
		return time.UnixMilli(v)
	}
	return time.Time{}
}
