// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/civickey/civickey/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for CivicKey.
//
// These values come from environment variables (CIVICKEY_*), config files,
// or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig handles
// the framework-level settings: ports, TLS, logging level and format,
// request body limits.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI      string // e.g. mongodb://localhost:27017
	MongoDatabase string

	// Admin session configuration
	SessionKey    string        // secret for signing session cookies
	SessionName   string        // cookie name (default: civickey-admin)
	SessionDomain string        // cookie domain (blank means current host)
	IdleTimeout   time.Duration // sign out after this long without activity

	// Tenant resolution
	BaseDomain            string   // platform domain, e.g. civickey.ca
	DevHosts              []string // extra hosts served in path mode
	DomainCacheBackend    string   // "memory" or "redis"
	DomainCacheTTL        time.Duration
	DomainCacheMaxEntries int

	// Custom domains
	CNAMETarget         string        // host custom domains must CNAME to
	DomainCheckInterval time.Duration // how often verified domains are re-checked
	Route53HostedZoneID string        // blank only logs registrations

	// Redis, shared by the domain cache and push delivery
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LocaleCookie string
	Timezone     string // IANA zone collection days are evaluated in

	// Push reminders (requires Redis)
	PushEnabled bool

	// Origins allowed to call the public API from a browser. Empty allows any.
	CORSAllowedOrigins []string

	// Email/SMTP configuration. An empty host logs emails instead of sending.
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string
	MailFromName string
	SiteName     string // used in email subjects

	// Per-operation-class deadlines; zero keeps the default
	Timeouts timeouts.Config

	// SuperAdmin bootstrap
	SuperAdminEmail    string
	SuperAdminPassword string
}
