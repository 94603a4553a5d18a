package content

import (
	"context"
	"errors"
	"sync"

	schedulestore "github.com/civickey/civickey/internal/app/store/schedules"
	"github.com/civickey/civickey/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FetchAll loads config, zones, schedule, events, alerts and facilities
// concurrently. Parts fail independently: a failed part is left empty and
// its error recorded in Snapshot.Errors, the others are still returned. A
// municipality without a schedule document gets a nil Schedule and no
// error.
func (s *Service) FetchAll(ctx context.Context, municipalityID string) models.Snapshot {
	snap := models.Snapshot{
		MunicipalityID: municipalityID,
		Zones:          []models.Zone{},
		Events:         []models.Event{},
		Alerts:         []models.Alert{},
		Facilities:     []models.Facility{},
	}
	var (
		mu   sync.Mutex
		errs = map[string]string{}
	)

	// Sub-fetches never return an error to the group so one failure
	// does not cancel the others.
	var g errgroup.Group
	part := func(name string, fetch func() error) {
		g.Go(func() error {
			err := fetch()
			s.metrics.AggregatePart(name, err)
			if err != nil {
				s.log.Warn("aggregate part failed",
					zap.String("municipality_id", municipalityID),
					zap.String("part", name),
					zap.Error(err))
				mu.Lock()
				errs[name] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}

	part(models.PartConfig, func() error {
		m, err := s.Config(ctx, municipalityID)
		if err == nil {
			snap.Config = &m
		}
		return err
	})
	part(models.PartZones, func() error {
		z, err := s.Zones(ctx, municipalityID)
		if err == nil {
			snap.Zones = z
		}
		return err
	})
	part(models.PartSchedule, func() error {
		sch, err := s.schedules.Get(ctx, municipalityID)
		if errors.Is(err, schedulestore.ErrNotFound) {
			return nil
		}
		if err == nil {
			snap.Schedule = &sch
		}
		return err
	})
	part(models.PartEvents, func() error {
		e, err := s.UpcomingEvents(ctx, municipalityID, 0)
		if err == nil {
			snap.Events = e
		}
		return err
	})
	part(models.PartAlerts, func() error {
		a, err := s.ActiveAlerts(ctx, municipalityID)
		if err == nil {
			snap.Alerts = a
		}
		return err
	})
	part(models.PartFacilities, func() error {
		f, err := s.Facilities(ctx, municipalityID)
		if err == nil {
			snap.Facilities = f
		}
		return err
	})
	_ = g.Wait()

	if len(snap.Zones) == 1 {
		snap.DefaultZoneID = snap.Zones[0].ZoneID
	}
	if len(errs) > 0 {
		snap.Errors = errs
	}
	snap.FetchedAt = s.now().UTC()
	return snap
}
