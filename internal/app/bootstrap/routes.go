// internal/app/bootstrap/routes.go
package bootstrap

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/civickey/civickey/internal/app/content"
	devicesfeature "github.com/civickey/civickey/internal/app/features/devices"
	errorsfeature "github.com/civickey/civickey/internal/app/features/errors"
	healthfeature "github.com/civickey/civickey/internal/app/features/health"
	managefeature "github.com/civickey/civickey/internal/app/features/manage"
	platformfeature "github.com/civickey/civickey/internal/app/features/platform"
	publicapifeature "github.com/civickey/civickey/internal/app/features/publicapi"
	sessionfeature "github.com/civickey/civickey/internal/app/features/session"
	sitefeature "github.com/civickey/civickey/internal/app/features/site"
	adminstore "github.com/civickey/civickey/internal/app/store/admins"
	identitystore "github.com/civickey/civickey/internal/app/store/identities"
	municipalitystore "github.com/civickey/civickey/internal/app/store/municipalities"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/domains"
	"github.com/civickey/civickey/internal/app/system/identity"
	"github.com/civickey/civickey/internal/app/system/locale"
	"github.com/civickey/civickey/internal/app/system/mailer"
	"github.com/civickey/civickey/internal/app/system/metrics"
	"github.com/civickey/civickey/internal/app/system/pushqueue"
	"github.com/civickey/civickey/internal/app/system/tenant"
	"github.com/civickey/civickey/internal/app/system/workers"
	"github.com/civickey/civickey/internal/client/kv"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler and starts the background
// workers that serve it.
//
// Every request first goes through tenant resolution (subdomain, custom
// domain or, on dev hosts, the first path segment) and locale resolution.
// The router then serves:
//   - /health and /metrics
//   - /api/v1: the public content API, by ID under /m/{id} or for the
//     resolved tenant
//   - /api/v1/devices: device reminder registration
//   - /admin: the session, platform and municipality back office
//   - everything else: the municipality website
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	loc, err := time.LoadLocation(appCfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}
	m := metrics.New()
	munis := municipalitystore.New(db)
	admins := adminstore.New(db)
	bgCtx := deps.Background.start()

	// Tenant resolution.
	var cache tenant.DomainCache
	if appCfg.DomainCacheBackend == "redis" {
		cache = tenant.NewRedisCache(deps.Redis, appCfg.DomainCacheTTL, logger)
	} else {
		cache = tenant.NewMemoryCache(appCfg.DomainCacheTTL, appCfg.DomainCacheMaxEntries)
	}
	resolver := tenant.NewResolver(tenant.Config{
		BaseDomain: appCfg.BaseDomain,
		DevHosts:   appCfg.DevHosts,
	}, munis, cache, m, logger)

	// Admin sessions. Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	sessionMgr.SetAccountFetcher(admins)
	sessionMgr.SetMunicipalityChecker(munis)
	sessionMgr.SetIdleTimeout(appCfg.IdleTimeout)

	var mail mailer.Sender = mailer.LogSender{Log: logger}
	if appCfg.MailSMTPHost != "" {
		mail = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		})
	}
	ident, err := identity.New(identitystore.New(db), admins, mail, appCfg.SiteName, logger)
	if err != nil {
		return nil, fmt.Errorf("identity service: %w", err)
	}

	svc := content.New(db, loc, m, logger)
	var registrar domains.Registrar = domains.LogRegistrar{Log: logger}
	if appCfg.Route53HostedZoneID != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(bgCtx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		registrar = domains.NewRoute53Registrar(route53.NewFromConfig(awsCfg), appCfg.Route53HostedZoneID, appCfg.CNAMETarget, logger)
	}
	dom := domains.New(munis, registrar, net.DefaultResolver, resolver,
		appCfg.CNAMETarget, appCfg.BaseDomain, logger)

	sessionHandler := sessionfeature.NewHandler(ident, sessionMgr, logger)
	go sessionHandler.Run(bgCtx)
	platformHandler := platformfeature.NewHandler(db, ident, resolver, m, logger)
	manageHandler := managefeature.NewHandler(db, svc, dom, m, logger)
	apiHandler := publicapifeature.NewHandler(svc, munis, logger)
	siteHandler := sitefeature.NewHandler(svc, appCfg.LocaleCookie, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)

	var devicesHandler *devicesfeature.Handler
	if appCfg.PushEnabled {
		devicesHandler, err = startPush(deps, appCfg, svc, loc, logger)
		if err != nil {
			return nil, err
		}
		go devicesHandler.Limit.Run(bgCtx)
	}

	domainCheck := workers.NewDomainCheck(munis, dom, logger, appCfg.DomainCheckInterval)
	domainCheck.Start()
	deps.Background.mu.Lock()
	deps.Background.domainCheck = domainCheck
	deps.Background.mu.Unlock()

	r := chi.NewRouter()
	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	r.Use(tenant.Middleware(resolver, appCfg.LocaleCookie))
	r.Use(locale.Middleware(appCfg.LocaleCookie))

	// Health check endpoint for load balancers and orchestrators
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", m.Handler())

	// Public API
	r.Mount("/api/v1/devices", devicesfeature.Routes(devicesHandler))
	r.Mount("/api/v1", publicapifeature.APIRoutes(apiHandler, appCfg.CORSAllowedOrigins))

	// Back office
	r.Route("/admin", func(r chi.Router) {
		r.Use(sessionMgr.LoadPrincipal)
		r.Mount("/session", sessionfeature.Routes(sessionHandler))
		r.Mount("/platform", platformfeature.Routes(platformHandler))
		r.Mount("/", managefeature.Routes(manageHandler))
	})

	// Municipality website
	r.Mount("/", sitefeature.Routes(siteHandler))

	return r, nil
}

// startPush starts the reminder queue and its worker and returns the
// device registration handler that feeds them.
func startPush(deps DBDeps, appCfg AppConfig, svc *content.Service, loc *time.Location, logger *zap.Logger) (*devicesfeature.Handler, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	}
	queue := pushqueue.New(redisOpt, kv.NewRedis(deps.Redis, "civickey:push"), logger)
	mux := pushqueue.NewMux(pushqueue.LogSender{Log: logger}, logger)
	worker, err := workers.NewPushWorker(redisOpt, mux, queue, pushqueue.DefaultQueue, loc, time.Minute, logger)
	if err != nil {
		_ = queue.Close()
		return nil, fmt.Errorf("push worker: %w", err)
	}
	if err := worker.Start(); err != nil {
		_ = queue.Close()
		return nil, fmt.Errorf("start push worker: %w", err)
	}

	deps.Background.mu.Lock()
	deps.Background.queue = queue
	deps.Background.push = worker
	deps.Background.mu.Unlock()

	registry := kv.NewRedis(deps.Redis, "civickey:devices")
	return devicesfeature.NewHandler(svc, queue, registry, loc, logger), nil
}
