// Package domains manages the custom domains of municipal websites: DNS
// verification, registration with the hosting provider, and keeping the
// tenant directory and domain cache in step.
package domains

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

var (
	ErrInvalidDomain  = errors.New("not a valid domain name")
	ErrPlatformDomain = errors.New("subdomains of the platform domain cannot be used as custom domains")
	ErrNotVerified    = errors.New("domain does not point to the platform yet")
)

// Registrar attaches and detaches domains at the hosting provider.
type Registrar interface {
	Add(ctx context.Context, host string) error
	Remove(ctx context.Context, host string) error
}

// CNAMEResolver is the subset of *net.Resolver used for verification.
type CNAMEResolver interface {
	LookupCNAME(ctx context.Context, host string) (string, error)
}

// Directory is the tenant directory.
type Directory interface {
	GetByID(ctx context.Context, id string) (models.Municipality, error)
	SetCustomDomain(ctx context.Context, id, host string, verifiedAt time.Time) (models.Municipality, error)
	ClearCustomDomain(ctx context.Context, id string) (models.Municipality, error)
}

// Invalidator drops cached host lookups.
type Invalidator interface {
	Invalidate(ctx context.Context, host string)
}

// LogRegistrar accepts every domain and only logs. It is used when no
// hosting provider is configured.
type LogRegistrar struct {
	Log *zap.Logger
}

func (r LogRegistrar) Add(_ context.Context, host string) error {
	r.Log.Info("domain registered (log only)", zap.String("host", host))
	return nil
}

func (r LogRegistrar) Remove(_ context.Context, host string) error {
	r.Log.Info("domain removed (log only)", zap.String("host", host))
	return nil
}

// Service adds, verifies and removes custom domains.
type Service struct {
	dir        Directory
	registrar  Registrar
	dns        CNAMEResolver
	cache      Invalidator
	target     string
	baseDomain string
	now        func() time.Time
	log        *zap.Logger
}

// New creates the service. target is the hostname custom domains must
// CNAME to; baseDomain is the platform domain.
func New(dir Directory, registrar Registrar, dns CNAMEResolver, cache Invalidator, target, baseDomain string, logger *zap.Logger) *Service {
	return &Service{
		dir:        dir,
		registrar:  registrar,
		dns:        dns,
		cache:      cache,
		target:     normalize.Hostname(target),
		baseDomain: normalize.Hostname(baseDomain),
		now:        time.Now,
		log:        logger,
	}
}

// Target returns the CNAME target shown to admins.
func (s *Service) Target() string { return s.target }

var hostnameRE = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)

// Check normalizes host and rejects names that cannot be custom domains.
func (s *Service) Check(host string) (string, error) {
	host = normalize.Hostname(host)
	if len(host) > 253 || !hostnameRE.MatchString(host) {
		return "", ErrInvalidDomain
	}
	if s.baseDomain != "" && (host == s.baseDomain || strings.HasSuffix(host, "."+s.baseDomain)) {
		return "", ErrPlatformDomain
	}
	return host, nil
}

// Verify reports whether host has a CNAME to the target.
func (s *Service) Verify(ctx context.Context, host string) error {
	host, err := s.Check(host)
	if err != nil {
		return err
	}
	cname, err := s.dns.LookupCNAME(ctx, host)
	if err != nil {
		s.log.Info("cname lookup failed", zap.String("host", host), zap.Error(err))
		return ErrNotVerified
	}
	if normalize.Hostname(cname) != s.target {
		s.log.Info("cname mismatch",
			zap.String("host", host),
			zap.String("cname", cname),
			zap.String("target", s.target))
		return ErrNotVerified
	}
	return nil
}

// Add verifies host, registers it and assigns it to the municipality,
// replacing any previous custom domain. The registration is rolled back
// if the directory rejects the domain.
func (s *Service) Add(ctx context.Context, municipalityID, host string) (models.Municipality, error) {
	host, err := s.Check(host)
	if err != nil {
		return models.Municipality{}, err
	}
	prev, err := s.dir.GetByID(ctx, municipalityID)
	if err != nil {
		return models.Municipality{}, err
	}
	if err := s.Verify(ctx, host); err != nil {
		return models.Municipality{}, err
	}
	if err := s.registrar.Add(ctx, host); err != nil {
		return models.Municipality{}, fmt.Errorf("register domain: %w", err)
	}

	m, err := s.dir.SetCustomDomain(ctx, municipalityID, host, s.now())
	if err != nil {
		if rerr := s.registrar.Remove(ctx, host); rerr != nil {
			s.log.Error("rollback domain registration failed", zap.String("host", host), zap.Error(rerr))
		}
		return models.Municipality{}, err
	}
	s.cache.Invalidate(ctx, host)

	if old := prev.Website.CustomDomain; old != "" && old != host {
		s.cache.Invalidate(ctx, old)
		if err := s.registrar.Remove(ctx, old); err != nil {
			s.log.Warn("remove replaced domain failed", zap.String("host", old), zap.Error(err))
		}
	}
	s.log.Info("custom domain added",
		zap.String("municipality_id", municipalityID),
		zap.String("host", host))
	return m, nil
}

// Remove detaches the municipality's custom domain, if any.
func (s *Service) Remove(ctx context.Context, municipalityID string) (models.Municipality, error) {
	prev, err := s.dir.GetByID(ctx, municipalityID)
	if err != nil {
		return models.Municipality{}, err
	}
	host := prev.Website.CustomDomain
	if host == "" {
		return prev, nil
	}
	if err := s.registrar.Remove(ctx, host); err != nil {
		return models.Municipality{}, fmt.Errorf("unregister domain: %w", err)
	}
	m, err := s.dir.ClearCustomDomain(ctx, municipalityID)
	if err != nil {
		return models.Municipality{}, err
	}
	s.cache.Invalidate(ctx, host)
	s.log.Info("custom domain removed",
		zap.String("municipality_id", municipalityID),
		zap.String("host", host))
	return m, nil
}
