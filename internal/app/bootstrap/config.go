// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/idle"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CivicKey.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, base_domain, etc.
//   - Environment variables: CIVICKEY_MONGO_URI, CIVICKEY_BASE_DOMAIN, etc.
//   - Command-line flags: --mongo_uri, --base_domain, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "civickey", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: auth.DefaultSessionName, Desc: "Admin session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "idle_timeout", Default: idle.DefaultThreshold.String(), Desc: "Admin inactivity sign-out (e.g., 15m)"},

	// Tenant resolution
	{Name: "base_domain", Default: "civickey.ca", Desc: "Platform domain; municipalities are served at <id>.<base_domain>"},
	{Name: "dev_hosts", Default: "", Desc: "Comma-separated extra hosts served in path mode"},
	{Name: "domain_cache_backend", Default: "memory", Desc: "Custom domain cache: 'memory' or 'redis'"},
	{Name: "domain_cache_ttl", Default: "5m", Desc: "Custom domain cache entry lifetime"},
	{Name: "domain_cache_max_entries", Default: 10000, Desc: "Max entries of the in-memory domain cache"},

	// Custom domains
	{Name: "cname_target", Default: "sites.civickey.ca", Desc: "Host custom domains must CNAME to"},
	{Name: "domain_check_interval", Default: "1h", Desc: "How often verified custom domains are re-checked"},
	{Name: "route53_hosted_zone_id", Default: "", Desc: "Route 53 hosted zone custom domains are published in (blank logs only)"},

	// Redis
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port); blank disables Redis"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "locale_cookie", Default: "civickey-locale", Desc: "Cookie holding the visitor's locale"},
	{Name: "timezone", Default: "America/Montreal", Desc: "Timezone collection days and reminders are computed in"},

	{Name: "push_enabled", Default: false, Desc: "Deliver device reminders through the push queue (requires redis_addr)"},
	{Name: "cors_allowed_origins", Default: "", Desc: "Comma-separated origins allowed to call the public API (blank allows any)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank logs emails instead)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@civickey.ca", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CivicKey", Desc: "From display name"},
	{Name: "site_name", Default: "CivicKey", Desc: "Name used in email subjects"},

	// Operation timeouts
	{Name: "timeout_ping", Default: timeouts.DefaultPing.String(), Desc: "Deadline for health pings"},
	{Name: "timeout_short", Default: timeouts.DefaultShort.String(), Desc: "Deadline for single lookups"},
	{Name: "timeout_medium", Default: timeouts.DefaultMedium.String(), Desc: "Deadline for list queries, writes and the aggregate fetch"},
	{Name: "timeout_long", Default: timeouts.DefaultLong.String(), Desc: "Deadline for index creation and startup work"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the super-admin (promotes/creates on startup)"},
	{Name: "superadmin_password", Default: "", Desc: "Initial super-admin password (blank: use password reset)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// Sources are merged with precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CIVICKEY", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		IdleTimeout:   appValues.Duration("idle_timeout", idle.DefaultThreshold),

		BaseDomain:            strings.ToLower(strings.TrimSpace(appValues.String("base_domain"))),
		DevHosts:              splitList(appValues.String("dev_hosts")),
		DomainCacheBackend:    strings.ToLower(appValues.String("domain_cache_backend")),
		DomainCacheTTL:        appValues.Duration("domain_cache_ttl", 5*time.Minute),
		DomainCacheMaxEntries: appValues.Int("domain_cache_max_entries"),

		CNAMETarget:         appValues.String("cname_target"),
		DomainCheckInterval: appValues.Duration("domain_check_interval", time.Hour),
		Route53HostedZoneID: appValues.String("route53_hosted_zone_id"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		LocaleCookie: appValues.String("locale_cookie"),
		Timezone:     appValues.String("timezone"),

		PushEnabled:        appValues.Bool("push_enabled"),
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		SiteName:     appValues.String("site_name"),

		Timeouts: timeouts.Config{
			Ping:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
		},

		SuperAdminEmail:    appValues.String("superadmin_email"),
		SuperAdminPassword: appValues.String("superadmin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that cannot start: a malformed
// MongoDB URI, a missing base domain, an unknown timezone, and Redis-backed
// features without a Redis address.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.BaseDomain == "" {
		return fmt.Errorf("base_domain is required (e.g., 'civickey.ca')")
	}
	if _, err := time.LoadLocation(appCfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", appCfg.Timezone, err)
	}
	switch appCfg.DomainCacheBackend {
	case "memory":
	case "redis":
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("domain_cache_backend=redis requires redis_addr")
		}
	default:
		return fmt.Errorf("domain_cache_backend must be 'memory' or 'redis', got %q", appCfg.DomainCacheBackend)
	}
	if appCfg.PushEnabled && appCfg.RedisAddr == "" {
		return fmt.Errorf("push_enabled requires redis_addr")
	}
	if appCfg.IdleTimeout <= 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	t := appCfg.Timeouts
	if t.Ping < 0 || t.Short < 0 || t.Medium < 0 || t.Long < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
