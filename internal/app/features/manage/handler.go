// Package manage serves the admin console's content management API. Every
// route acts on the principal's effective municipality and is gated by the
// permission matrix.
package manage

import (
	"net/http"

	"github.com/civickey/civickey/internal/app/content"
	alertstore "github.com/civickey/civickey/internal/app/store/alerts"
	eventstore "github.com/civickey/civickey/internal/app/store/events"
	facilitystore "github.com/civickey/civickey/internal/app/store/facilities"
	municipalitystore "github.com/civickey/civickey/internal/app/store/municipalities"
	pagestore "github.com/civickey/civickey/internal/app/store/pages"
	roadclosurestore "github.com/civickey/civickey/internal/app/store/roadclosures"
	wasteitemstore "github.com/civickey/civickey/internal/app/store/wasteitems"
	zonestore "github.com/civickey/civickey/internal/app/store/zones"
	"github.com/civickey/civickey/internal/app/system/auth"
	"github.com/civickey/civickey/internal/app/system/domains"
	"github.com/civickey/civickey/internal/app/system/metrics"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns the content management handlers.
type Handler struct {
	Content *content.Service
	Domains *domains.Service

	Munis      *municipalitystore.Store
	Zones      *zonestore.Store
	Events     *eventstore.Store
	Alerts     *alertstore.Store
	Facilities *facilitystore.Store
	Closures   *roadclosurestore.Store
	Pages      *pagestore.Store
	Waste      *wasteitemstore.Store

	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// NewHandler constructs a Handler over db. svc and dom are shared with the
// rest of the app.
func NewHandler(db *mongo.Database, svc *content.Service, dom *domains.Service, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Content:    svc,
		Domains:    dom,
		Munis:      municipalitystore.New(db),
		Zones:      zonestore.New(db),
		Events:     eventstore.New(db),
		Alerts:     alertstore.New(db),
		Facilities: facilitystore.New(db),
		Closures:   roadclosurestore.New(db),
		Pages:      pagestore.New(db),
		Waste:      wasteitemstore.New(db),
		Metrics:    m,
		Log:        logger,
	}
}

// municipality is the tenant the request acts on. Routes run behind
// authz.RequireTenant, so it is never empty.
func municipality(r *http.Request) string {
	p, _ := auth.CurrentPrincipal(r)
	return p.EffectiveMunicipality()
}

func actor(r *http.Request) zap.Field {
	p, _ := auth.CurrentPrincipal(r)
	return zap.String("uid", p.UID)
}
