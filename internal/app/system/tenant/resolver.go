// Package tenant scopes requests to a single municipality.
//
// Three modes are tried in order:
//   - subdomain: saint-lazare.civickey.ca resolves to "saint-lazare" without
//     touching the store
//   - path: on loopback and development hosts the first path segment is the
//     municipality and the second must be a locale
//   - custom domain: other hosts are looked up in the tenant directory
//     behind a bounded TTL cache
//
// Lookup failures are logged and treated as "no tenant".
package tenant

import (
	"context"
	"net"
	"strings"

	"github.com/civickey/civickey/internal/app/system/metrics"
	"github.com/civickey/civickey/internal/app/system/normalize"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
)

// Mode says how a tenant was found.
type Mode string

const (
	ModeNone         Mode = "none"
	ModeSubdomain    Mode = "subdomain"
	ModePath         Mode = "path"
	ModeCustomDomain Mode = "custom"

	// ModeExplicit is set by routes that name the municipality in the URL,
	// such as the by-ID content API.
	ModeExplicit Mode = "explicit"
)

// Resolution is the outcome of resolving a host and path.
type Resolution struct {
	MunicipalityID string
	Mode           Mode

	// Path mode only. Locale is the locale segment when present, and
	// Rewrite is the request path with the municipality segment removed.
	// LocaleMissing means the request should be redirected to a path with a
	// locale inserted after the municipality segment (see RedirectPath).
	Locale        string
	Rewrite       string
	LocaleMissing bool
}

// Found reports whether a municipality was resolved.
func (r Resolution) Found() bool {
	return r.MunicipalityID != ""
}

// Directory looks up the municipality that owns a verified custom domain.
// It returns "" with a nil error when no active municipality matches.
type Directory interface {
	MunicipalityIDByCustomDomain(ctx context.Context, host string) (string, error)
}

// Config configures a Resolver.
type Config struct {
	// BaseDomain is the platform domain, e.g. "civickey.ca".
	BaseDomain string

	// DevHosts are extra hosts served in path mode, in addition to the
	// loopback names.
	DevHosts []string

	// ReservedSegments are first path segments that never name a
	// municipality in path mode (api, admin, ...).
	ReservedSegments []string
}

// DefaultReservedSegments are used when Config.ReservedSegments is nil.
var DefaultReservedSegments = []string{"api", "admin", "health", "metrics", "static", "favicon.ico"}

// Resolver maps hosts and paths to municipality IDs. It is safe for
// concurrent use.
type Resolver struct {
	baseSuffix string
	baseDomain string
	devHosts   map[string]bool
	reserved   map[string]bool
	dir        Directory
	cache      DomainCache
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewResolver builds a resolver. cache may be nil to disable caching.
func NewResolver(cfg Config, dir Directory, cache DomainCache, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	base := normalize.Hostname(cfg.BaseDomain)
	r := &Resolver{
		baseDomain: base,
		baseSuffix: "." + base,
		devHosts:   map[string]bool{"localhost": true, "127.0.0.1": true, "::1": true},
		reserved:   map[string]bool{},
		dir:        dir,
		cache:      cache,
		metrics:    m,
		log:        logger,
	}
	for _, h := range cfg.DevHosts {
		if h = normalize.Hostname(h); h != "" {
			r.devHosts[h] = true
		}
	}
	reserved := cfg.ReservedSegments
	if reserved == nil {
		reserved = DefaultReservedSegments
	}
	for _, s := range reserved {
		r.reserved[strings.ToLower(s)] = true
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	return r
}

// Resolve returns the municipality for host and path.
func (r *Resolver) Resolve(ctx context.Context, host, path string) Resolution {
	host = normalize.Hostname(host)
	if host == "" || host == r.baseDomain {
		r.metrics.TenantResolved(string(ModeNone), "none")
		return Resolution{Mode: ModeNone}
	}

	if r.baseDomain != "" && strings.HasSuffix(host, r.baseSuffix) {
		res := r.fromSubdomain(host)
		r.record(res, "")
		return res
	}

	if r.isDevHost(host) {
		res := r.fromPath(path)
		outcome := ""
		if res.LocaleMissing {
			outcome = "redirect"
		}
		r.record(res, outcome)
		return res
	}

	return r.fromCustomDomain(ctx, host)
}

// fromSubdomain takes the label immediately before the base domain, so
// www.saint-lazare.civickey.ca also resolves to "saint-lazare".
func (r *Resolver) fromSubdomain(host string) Resolution {
	prefix := strings.TrimSuffix(host, r.baseSuffix)
	if i := strings.LastIndexByte(prefix, '.'); i != -1 {
		prefix = prefix[i+1:]
	}
	if prefix == "" {
		return Resolution{Mode: ModeSubdomain}
	}
	return Resolution{MunicipalityID: prefix, Mode: ModeSubdomain}
}

func (r *Resolver) fromPath(path string) Resolution {
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	first := strings.ToLower(segs[0])
	if first == "" || r.reserved[first] {
		return Resolution{Mode: ModePath}
	}

	res := Resolution{MunicipalityID: first, Mode: ModePath}
	if len(segs) > 1 && models.IsSupportedLocale(segs[1]) {
		res.Locale = segs[1]
		res.Rewrite = "/" + strings.Join(segs[1:], "/")
		return res
	}
	res.LocaleMissing = true
	return res
}

func (r *Resolver) fromCustomDomain(ctx context.Context, host string) Resolution {
	if r.cache != nil {
		id, ok := r.cache.Get(ctx, host)
		r.metrics.DomainCacheLookup(ok)
		if ok {
			res := Resolution{MunicipalityID: id, Mode: ModeCustomDomain}
			r.record(res, "")
			return res
		}
	}

	if r.dir == nil {
		r.record(Resolution{Mode: ModeCustomDomain}, "")
		return Resolution{Mode: ModeCustomDomain}
	}

	id, err := r.dir.MunicipalityIDByCustomDomain(ctx, host)
	if err != nil {
		r.log.Warn("custom domain lookup failed",
			zap.String("host", host),
			zap.Error(err))
		r.metrics.TenantResolved(string(ModeCustomDomain), "error")
		return Resolution{Mode: ModeCustomDomain}
	}
	res := Resolution{MunicipalityID: id, Mode: ModeCustomDomain}
	if id != "" && r.cache != nil {
		r.cache.Set(ctx, host, id)
	}
	r.record(res, "")
	return res
}

// Invalidate drops a cached custom domain, after it is removed or its
// municipality is deactivated.
func (r *Resolver) Invalidate(ctx context.Context, host string) {
	if r.cache == nil {
		return
	}
	if host = normalize.Hostname(host); host != "" {
		r.cache.Delete(ctx, host)
	}
}

func (r *Resolver) isDevHost(host string) bool {
	if r.devHosts[host] || strings.HasSuffix(host, ".localhost") {
		return true
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return true
	}
	return false
}

func (r *Resolver) record(res Resolution, outcome string) {
	if outcome == "" {
		outcome = "none"
		if res.Found() {
			outcome = "resolved"
		}
	}
	r.metrics.TenantResolved(string(res.Mode), outcome)
}

// RedirectPath inserts locale after the municipality segment of path:
// "/saint-lazare/events" becomes "/saint-lazare/fr/events".
func RedirectPath(path, locale string) string {
	segs := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)
	out := "/" + segs[0] + "/" + locale
	if len(segs) == 2 && segs[1] != "" {
		out += "/" + segs[1]
	}
	return out
}
