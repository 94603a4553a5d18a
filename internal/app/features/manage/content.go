package manage

import (
	"context"

	"github.com/civickey/civickey/internal/app/content"
	"github.com/civickey/civickey/internal/app/system/authz"
	"github.com/civickey/civickey/internal/app/system/validators"
	"github.com/civickey/civickey/internal/domain/models"
)

func (h *Handler) events() resource[models.Event, models.Event] {
	return resource[models.Event, models.Event]{
		name:     "event",
		feature:  authz.Events,
		list:     h.Events.List,
		get:      h.Events.Get,
		create:   h.Events.Create,
		update:   h.Events.Update,
		remove:   h.Events.Delete,
		validate: validators.Event,
	}
}

func (h *Handler) alerts() resource[models.Alert, models.Alert] {
	return resource[models.Alert, models.Alert]{
		name:     "alert",
		feature:  authz.Announcements,
		list:     h.Alerts.List,
		get:      h.Alerts.Get,
		create:   h.Alerts.Create,
		update:   h.Alerts.Update,
		remove:   h.Alerts.Delete,
		validate: validators.Alert,
	}
}

func (h *Handler) facilities() resource[models.Facility, models.Facility] {
	return resource[models.Facility, models.Facility]{
		name:     "facility",
		feature:  authz.Facilities,
		list:     h.Facilities.List,
		get:      h.Facilities.Get,
		create:   h.Facilities.Create,
		update:   h.Facilities.Update,
		remove:   h.Facilities.Delete,
		validate: validators.Facility,
	}
}

// roadClosures lists completed closures too.
func (h *Handler) roadClosures() resource[models.RoadClosure, models.RoadClosure] {
	return resource[models.RoadClosure, models.RoadClosure]{
		name:    "road closure",
		feature: authz.RoadClosures,
		list: func(ctx context.Context, muni string) ([]models.RoadClosure, error) {
			return h.Closures.List(ctx, muni, true)
		},
		get:      h.Closures.Get,
		create:   h.Closures.Create,
		update:   h.Closures.Update,
		remove:   h.Closures.Delete,
		validate: validators.RoadClosure,
	}
}

// zones keeps the zone ID immutable: updates take it from the path and
// deletes refuse zones the schedule still references.
func (h *Handler) zones() resource[models.Zone, models.Zone] {
	return resource[models.Zone, models.Zone]{
		name:    "zone",
		feature: authz.Zones,
		list:    h.Zones.List,
		get:     h.Zones.Get,
		create: func(ctx context.Context, muni string, z models.Zone) (models.Zone, error) {
			if err := validators.Zone(z); err != nil {
				return models.Zone{}, err
			}
			return h.Zones.Create(ctx, muni, z)
		},
		update: func(ctx context.Context, muni, id string, z models.Zone) (models.Zone, error) {
			z.ZoneID = id
			if err := validators.Zone(z); err != nil {
				return models.Zone{}, err
			}
			return h.Zones.Update(ctx, muni, id, z)
		},
		remove: h.Content.DeleteZone,
	}
}

// pages accept a PageInput so content is checked against the page type.
// The list includes drafts.
func (h *Handler) pages() resource[content.PageInput, models.CustomPage] {
	return resource[content.PageInput, models.CustomPage]{
		name:    "page",
		feature: authz.Pages,
		list:    h.Pages.List,
		get:     h.Pages.Get,
		create:  h.Content.CreatePage,
		update:  h.Content.UpdatePage,
		remove:  h.Pages.Delete,
	}
}

// wasteItems check the bin against the schedule's collection types.
func (h *Handler) wasteItems() resource[models.WasteItem, models.WasteItem] {
	return resource[models.WasteItem, models.WasteItem]{
		name:    "waste item",
		feature: authz.WasteItems,
		list:    h.Waste.List,
		get:     h.Waste.Get,
		create:  h.Content.CreateWasteItem,
		update:  h.Content.UpdateWasteItem,
		remove:  h.Waste.Delete,
	}
}
