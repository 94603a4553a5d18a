package manage

import (
	"context"
	"net/http"

	uierrors "github.com/civickey/civickey/internal/app/features/errors"
	"github.com/civickey/civickey/internal/app/system/httpjson"
	"github.com/civickey/civickey/internal/app/system/timeouts"
	"github.com/civickey/civickey/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

// dashboardView summarizes a municipality's content.
type dashboardView struct {
	Municipality   models.Municipality `json:"municipality"`
	Zones          int                 `json:"zones"`
	Events         int                 `json:"events"`
	UpcomingEvents int                 `json:"upcomingEvents"`
	Alerts         int                 `json:"alerts"`
	ActiveAlerts   int                 `json:"activeAlerts"`
	Facilities     int                 `json:"facilities"`
	RoadClosures   int                 `json:"roadClosures"`
	Pages          int                 `json:"pages"`
	WasteItems     int                 `json:"wasteItems"`
}

// Dashboard returns content counts for the console's landing screen.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	muni := municipality(r)

	var v dashboardView
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		v.Municipality, err = h.Munis.GetByID(ctx, muni)
		return err
	})
	count := func(dst *int, f func() (int, error)) {
		g.Go(func() (err error) {
			*dst, err = f()
			return err
		})
	}
	count(&v.Zones, func() (int, error) { return length(h.Zones.List(ctx, muni)) })
	count(&v.Events, func() (int, error) { return length(h.Events.List(ctx, muni)) })
	count(&v.UpcomingEvents, func() (int, error) { return length(h.Content.UpcomingEvents(ctx, muni, 0)) })
	count(&v.Alerts, func() (int, error) { return length(h.Alerts.List(ctx, muni)) })
	count(&v.ActiveAlerts, func() (int, error) { return length(h.Content.ActiveAlerts(ctx, muni)) })
	count(&v.Facilities, func() (int, error) { return length(h.Facilities.List(ctx, muni)) })
	count(&v.RoadClosures, func() (int, error) { return length(h.Closures.List(ctx, muni, false)) })
	count(&v.Pages, func() (int, error) { return length(h.Pages.List(ctx, muni)) })
	count(&v.WasteItems, func() (int, error) { return length(h.Waste.List(ctx, muni)) })

	if err := g.Wait(); err != nil {
		uierrors.Respond(w, r, h.Log, err)
		return
	}
	httpjson.OK(w, v)
}

func length[T any](items []T, err error) (int, error) {
	return len(items), err
}
