package models

import (
	"sort"
	"time"
)

// Frequency of a zone's collection.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly
}

// CollectionType is one entry of the ordered collection catalog
// (garbage, recycling, compost, ...).
type CollectionType struct {
	ID      string    `bson:"id" json:"id"`
	Name    Localized `bson:"name" json:"name"`
	BinName Localized `bson:"bin_name" json:"binName"`
	Color   string    `bson:"color" json:"color"`
	Icon    string    `bson:"icon" json:"icon"`
}

// ZoneCollection is the day and frequency a collection type is picked up
// in one zone. DayOfWeek follows time.Weekday (0 = Sunday).
type ZoneCollection struct {
	DayOfWeek int       `bson:"day_of_week" json:"dayOfWeek"`
	Frequency Frequency `bson:"frequency" json:"frequency"`
}

// ZoneSchedule maps collection type ID to its pickup rule.
type ZoneSchedule map[string]ZoneCollection

// SpecialCollection is a one-off pickup (bulky items, leaves, ...).
// An empty Zones list applies to every zone.
type SpecialCollection struct {
	ID     string    `bson:"id" json:"id"`
	Name   Localized `bson:"name" json:"name"`
	Date   string    `bson:"date" json:"date"` // YYYY-MM-DD
	Zones  []string  `bson:"zones,omitempty" json:"zones,omitempty"`
	Active bool      `bson:"active" json:"active"`
}

// AppliesTo reports whether the special collection covers zoneID.
func (s SpecialCollection) AppliesTo(zoneID string) bool {
	if len(s.Zones) == 0 {
		return true
	}
	for _, z := range s.Zones {
		if z == zoneID {
			return true
		}
	}
	return false
}

// Schedule is the single collection-schedule document of a municipality.
type Schedule struct {
	MunicipalityID     string                  `bson:"municipality_id" json:"municipalityId"`
	CollectionTypes    []CollectionType        `bson:"collection_types" json:"collectionTypes"`
	Schedules          map[string]ZoneSchedule `bson:"schedules" json:"schedules"`
	Guidelines         Localized               `bson:"guidelines" json:"guidelines"`
	SpecialCollections []SpecialCollection     `bson:"special_collections,omitempty" json:"specialCollections,omitempty"`
	UpdatedAt          time.Time               `bson:"updated_at" json:"updatedAt"`
}

// ForZone returns the collection rules of one zone and whether the zone has
// an entry. The returned map is a copy.
func (s Schedule) ForZone(zoneID string) (ZoneSchedule, bool) {
	zs, ok := s.Schedules[zoneID]
	if !ok {
		return nil, false
	}
	out := make(ZoneSchedule, len(zs))
	for k, v := range zs {
		out[k] = v
	}
	return out, true
}

// SpecialCollectionsFor returns the active special collections that apply
// to zoneID, in stored order.
func (s Schedule) SpecialCollectionsFor(zoneID string) []SpecialCollection {
	var out []SpecialCollection
	for _, sc := range s.SpecialCollections {
		if sc.Active && sc.AppliesTo(zoneID) {
			out = append(out, sc)
		}
	}
	return out
}

// CollectionType looks up a catalog entry by ID.
func (s Schedule) CollectionType(id string) (CollectionType, bool) {
	for _, ct := range s.CollectionTypes {
		if ct.ID == id {
			return ct, true
		}
	}
	return CollectionType{}, false
}

// OrphanZones returns the zone keys referenced in Schedules that are not in
// zoneIDs, sorted.
func (s Schedule) OrphanZones(zoneIDs []string) []string {
	known := make(map[string]struct{}, len(zoneIDs))
	for _, id := range zoneIDs {
		known[id] = struct{}{}
	}
	var orphans []string
	for zoneID := range s.Schedules {
		if _, ok := known[zoneID]; !ok {
			orphans = append(orphans, zoneID)
		}
	}
	sort.Strings(orphans)
	return orphans
}
