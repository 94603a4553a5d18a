package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/client/apiclient"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrIdleSignedOut ends a shell whose session expired from inactivity.
var ErrIdleSignedOut = eris.New("signed out after inactivity")

// AdminAPI is the back-office session an AdminShell drives.
type AdminAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.Admin, error)
	Me(ctx context.Context) (apiclient.Admin, error)
	SwitchMunicipality(ctx context.Context, id string) (apiclient.Admin, error)
	Activity(ctx context.Context) (bool, error)
	Logout(ctx context.Context) error
}

// AdminShell is a line-oriented back-office session. Every command counts
// as activity; once the session has been idle for the guard's threshold it
// is signed out on the server and locally.
type AdminShell struct {
	api   AdminAPI
	guard *idle.Guard
	log   *zap.Logger
}

func NewAdminShell(api AdminAPI, logger *zap.Logger, opts ...idle.Option) *AdminShell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminShell{
		api:   api,
		guard: idle.NewGuard(api.Logout, logger, opts...),
		log:   logger,
	}
}

// Run signs in and executes commands read from in until quit, end of
// input, or idle expiry.
func (s *AdminShell) Run(ctx context.Context, email, password string, in io.Reader, out io.Writer) error {
	if email == "" || password == "" {
		return eris.New("admin email and password are required (CIVICKEYCTL_ADMIN_EMAIL, CIVICKEYCTL_ADMIN_PASSWORD)")
	}
	me, err := s.api.Login(ctx, email, password)
	if err != nil {
		return eris.Wrap(err, "sign in")
	}
	s.guard.Start()
	defer s.guard.Stop()
	fmt.Fprintf(out, "Signed in as %s (%s).\n", me.Email, me.Role)

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		recorded := s.guard.Activity()
		if s.guard.State() == idle.StateExpired {
			return ErrIdleSignedOut
		}
		if recorded {
			if _, err := s.api.Activity(ctx); err != nil {
				return s.fail(ctx, eris.Wrap(err, "record activity"))
			}
		}
		done, err := s.exec(ctx, fields, out)
		if err != nil {
			return s.fail(ctx, err)
		}
		if done {
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return eris.Wrap(err, "read command")
	}
	return s.api.Logout(ctx)
}

// fail drops the local session when the server has already ended it.
func (s *AdminShell) fail(ctx context.Context, err error) error {
	if errors.Is(err, apiclient.ErrSignedOut) {
		if lerr := s.api.Logout(ctx); lerr != nil {
			s.log.Warn("local sign-out failed", zap.Error(lerr))
		}
	}
	return err
}

func (s *AdminShell) exec(ctx context.Context, fields []string, out io.Writer) (done bool, err error) {
	switch fields[0] {
	case "me":
		me, err := s.api.Me(ctx)
		if err != nil {
			return false, err
		}
		printAdmin(out, me)
	case "switch":
		id := ""
		if len(fields) > 1 {
			id = fields[1]
		}
		me, err := s.api.SwitchMunicipality(ctx, id)
		if err != nil {
			return false, err
		}
		printAdmin(out, me)
	case "quit", "exit", "logout":
		return true, s.api.Logout(ctx)
	default:
		fmt.Fprintln(out, "commands: me, switch [municipality-id], quit")
	}
	return false, nil
}

func printAdmin(w io.Writer, a apiclient.Admin) {
	muni := a.EffectiveMunicipality
	if muni == "" {
		muni = "-"
	}
	fmt.Fprintf(w, "%s\t%s\t%s\n", a.Email, a.Role, muni)
}
