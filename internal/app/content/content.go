// Package content is the read model of a municipality's public content and
// the validated write path for the documents with cross-document rules
// (schedule, pages, waste items). Every call takes the municipality ID and
// reaches Mongo only through tenant-scoped stores.
package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	alertstore "github.com/civickey/civickey/internal/app/store/alerts"
	eventstore "github.com/civickey/civickey/internal/app/store/events"
	facilitystore "github.com/civickey/civickey/internal/app/store/facilities"
	municipalitystore "github.com/civickey/civickey/internal/app/store/municipalities"
	pagestore "github.com/civickey/civickey/internal/app/store/pages"
	roadclosurestore "github.com/civickey/civickey/internal/app/store/roadclosures"
	schedulestore "github.com/civickey/civickey/internal/app/store/schedules"
	wasteitemstore "github.com/civickey/civickey/internal/app/store/wasteitems"
	zonestore "github.com/civickey/civickey/internal/app/store/zones"
	"github.com/civickey/civickey/internal/app/system/metrics"
	"github.com/civickey/civickey/internal/app/system/search"
	"github.com/civickey/civickey/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrNotFound wraps every store's not-found error.
var ErrNotFound = errors.New("not found")

// Service reads and writes tenant content.
type Service struct {
	munis      *municipalitystore.Store
	zones      *zonestore.Store
	schedules  *schedulestore.Store
	events     *eventstore.Store
	alerts     *alertstore.Store
	facilities *facilitystore.Store
	closures   *roadclosurestore.Store
	pages      *pagestore.Store
	waste      *wasteitemstore.Store

	loc     *time.Location
	now     func() time.Time
	metrics *metrics.Metrics
	log     *zap.Logger
}

// New creates the service. loc is the timezone "today" is computed in for
// events and alerts.
func New(db *mongo.Database, loc *time.Location, m *metrics.Metrics, logger *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		munis:      municipalitystore.New(db),
		zones:      zonestore.New(db),
		schedules:  schedulestore.New(db),
		events:     eventstore.New(db),
		alerts:     alertstore.New(db),
		facilities: facilitystore.New(db),
		closures:   roadclosurestore.New(db),
		pages:      pagestore.New(db),
		waste:      wasteitemstore.New(db),
		loc:        loc,
		now:        time.Now,
		metrics:    m,
		log:        logger,
	}
}

// Today is the current calendar date (YYYY-MM-DD) in the service timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}

var notFoundErrs = []error{
	municipalitystore.ErrNotFound,
	zonestore.ErrNotFound,
	schedulestore.ErrNotFound,
	eventstore.ErrNotFound,
	alertstore.ErrNotFound,
	facilitystore.ErrNotFound,
	roadclosurestore.ErrNotFound,
	pagestore.ErrNotFound,
	wasteitemstore.ErrNotFound,
}

func mapErr(err error) error {
	for _, nf := range notFoundErrs {
		if errors.Is(err, nf) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}

// Config returns the municipality profile. Inactive municipalities are
// not found.
func (s *Service) Config(ctx context.Context, municipalityID string) (models.Municipality, error) {
	m, err := s.munis.GetActive(ctx, municipalityID)
	return m, mapErr(err)
}

func (s *Service) Zones(ctx context.Context, municipalityID string) ([]models.Zone, error) {
	return s.zones.List(ctx, municipalityID)
}

func (s *Service) Schedule(ctx context.Context, municipalityID string) (models.Schedule, error) {
	sch, err := s.schedules.Get(ctx, municipalityID)
	return sch, mapErr(err)
}

// ZoneView is the schedule projected onto one zone.
type ZoneView struct {
	Zone               models.Zone                `json:"zone"`
	CollectionTypes    []models.CollectionType    `json:"collectionTypes"`
	Collections        models.ZoneSchedule        `json:"collections"`
	SpecialCollections []models.SpecialCollection `json:"specialCollections"`
	Guidelines         models.Localized           `json:"guidelines"`
}

// ZoneSchedule returns only what applies to zoneID. Unknown zones are
// ErrNotFound; a known zone without rules gets an empty collection map.
func (s *Service) ZoneSchedule(ctx context.Context, municipalityID, zoneID string) (ZoneView, error) {
	z, err := s.zones.Get(ctx, municipalityID, zoneID)
	if err != nil {
		return ZoneView{}, mapErr(err)
	}
	sch, err := s.schedules.Get(ctx, municipalityID)
	if errors.Is(err, schedulestore.ErrNotFound) {
		sch = models.Schedule{CollectionTypes: []models.CollectionType{}}
	} else if err != nil {
		return ZoneView{}, err
	}

	rules, ok := sch.ForZone(z.ZoneID)
	if !ok {
		rules = models.ZoneSchedule{}
	}
	specials := sch.SpecialCollectionsFor(z.ZoneID)
	if specials == nil {
		specials = []models.SpecialCollection{}
	}
	return ZoneView{
		Zone:               z,
		CollectionTypes:    sch.CollectionTypes,
		Collections:        rules,
		SpecialCollections: specials,
		Guidelines:         sch.Guidelines,
	}, nil
}

// UpcomingEvents returns events not yet over, soonest first. limit <= 0
// returns them all.
func (s *Service) UpcomingEvents(ctx context.Context, municipalityID string, limit int) ([]models.Event, error) {
	return s.events.Upcoming(ctx, municipalityID, s.Today(), limit)
}

// ActiveAlerts returns the alerts visible today, newest first.
func (s *Service) ActiveAlerts(ctx context.Context, municipalityID string) ([]models.Alert, error) {
	return s.alerts.Active(ctx, municipalityID, s.Today())
}

func (s *Service) Facilities(ctx context.Context, municipalityID string) ([]models.Facility, error) {
	return s.facilities.List(ctx, municipalityID)
}

// RoadClosures returns every closure, completed ones included.
func (s *Service) RoadClosures(ctx context.Context, municipalityID string) ([]models.RoadClosure, error) {
	return s.closures.List(ctx, municipalityID, true)
}

func (s *Service) PublishedPages(ctx context.Context, municipalityID string) ([]models.CustomPage, error) {
	return s.pages.Published(ctx, municipalityID)
}

// PageBySlug returns a published page.
func (s *Service) PageBySlug(ctx context.Context, municipalityID, slug string) (models.CustomPage, error) {
	p, err := s.pages.BySlug(ctx, municipalityID, slug, false)
	return p, mapErr(err)
}

func (s *Service) WasteItems(ctx context.Context, municipalityID string) ([]models.WasteItem, error) {
	return s.waste.List(ctx, municipalityID)
}

// SearchWasteItems runs the autocomplete over the municipality's catalog.
func (s *Service) SearchWasteItems(ctx context.Context, municipalityID, query string) ([]search.Result, error) {
	if len([]rune(query)) < search.MinQueryLen {
		return []search.Result{}, nil
	}
	items, err := s.waste.List(ctx, municipalityID)
	if err != nil {
		return nil, err
	}
	return search.Search(query, items), nil
}
